package domain

// CreditType is a discrete onboarding action that counts toward Pioneer activation.
type CreditType string

const (
	CreditFriendJoined    CreditType = "friend_joined"
	CreditFacebookImport  CreditType = "facebook_import"
	CreditProfileComplete CreditType = "profile_complete"
	CreditContactsImport  CreditType = "contacts_import"
)

var CreditTypes = []CreditType{CreditFriendJoined, CreditFacebookImport, CreditProfileComplete, CreditContactsImport}

func (t CreditType) Valid() bool {
	switch t {
	case CreditFriendJoined, CreditFacebookImport, CreditProfileComplete, CreditContactsImport:
		return true
	}
	return false
}

// MultiGrant reports whether the type may be earned once per distinct source.
func (t CreditType) MultiGrant() bool { return t == CreditFriendJoined }

type FriendStatus string

const (
	FriendPending    FriendStatus = "pending"
	FriendActive     FriendStatus = "active"
	FriendArchived   FriendStatus = "archived"
	FriendImportPool FriendStatus = "import_pool"
)

func (s FriendStatus) Valid() bool {
	switch s {
	case FriendPending, FriendActive, FriendArchived, FriendImportPool:
		return true
	}
	return false
}

type FriendSource string

const (
	SourceManual         FriendSource = "manual"
	SourceFacebookImport FriendSource = "facebook_import"
	SourceContactsImport FriendSource = "contacts_import"
)

type Tier string

const (
	TierRideOrDies Tier = "rideordies"
	TierSquad      Tier = "squad"
	TierRealOnes   Tier = "realones"
)

var Tiers = []Tier{TierRideOrDies, TierSquad, TierRealOnes}

func (t Tier) Valid() bool {
	switch t {
	case TierRideOrDies, TierSquad, TierRealOnes:
		return true
	}
	return false
}

// Experience is the onboarding surface a user is shown.
type Experience string

const (
	ExperiencePioneer Experience = "pioneer"
	ExperienceMain    Experience = "main"
)

// ConversationType is a direct message or a named group chat.
type ConversationType string

const (
	ConversationDM      ConversationType = "dm"
	ConversationBesties ConversationType = "besties"
	ConversationSquad   ConversationType = "squad"
)

func (t ConversationType) Valid() bool {
	switch t {
	case ConversationDM, ConversationBesties, ConversationSquad:
		return true
	}
	return false
}

type PostType string

const (
	PostText    PostType = "text"
	PostPhoto   PostType = "photo"
	PostVideo   PostType = "video"
	PostCheckin PostType = "checkin"
	PostPoll    PostType = "poll"
)

func (t PostType) Valid() bool {
	switch t {
	case PostText, PostPhoto, PostVideo, PostCheckin, PostPoll:
		return true
	}
	return false
}

// VisibilityCircle shows a post to the author's active friends.
const VisibilityCircle = "circle"

type ReactionType string

const (
	ReactionHeart ReactionType = "heart"
	ReactionHug   ReactionType = "hug"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionHeart, ReactionHug, ReactionLaugh, ReactionWow, ReactionSad:
		return true
	}
	return false
}

// Realtime change event types.
const (
	EventCreditsChanged      = "credits_changed"
	EventActivated           = "activated"
	EventCircleChanged       = "circle_changed"
	EventConversationCreated = "conversation_created"
	EventMessageCreated      = "message_created"
	EventTyping              = "typing"
	EventPostCreated         = "post_created"
)

// Notification types.
const (
	NotifyFriendJoined = "FRIEND_JOINED"
	NotifyActivated    = "PIONEER_ACTIVATED"
)
