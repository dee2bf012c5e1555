package circle

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"realones/internal/domain"
)

// ImportEntry is one contact handed to an import, before it is fingerprinted.
type ImportEntry struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

type facebookFriend struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// ParseFacebookExport reads the friends file from a Facebook data download. The
// export has shipped as {"friends_v2": [...]}, {"friends": [...]}, a nested
// {"friends": {"friends": [...]}} and a bare array. Entries without a name are skipped.
func ParseFacebookExport(r io.Reader) ([]ImportEntry, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode facebook export: %w", err)
	}
	list, err := friendsList(raw, 0)
	if err != nil {
		return nil, err
	}
	out := make([]ImportEntry, 0, len(list))
	for _, f := range list {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		out = append(out, ImportEntry{Name: name, Timestamp: f.Timestamp})
	}
	return out, nil
}

func friendsList(raw json.RawMessage, depth int) ([]facebookFriend, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []facebookFriend
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode facebook friends: %w", err)
		}
		return list, nil
	}
	if depth > 1 || !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: friends list is not an array", domain.ErrInvalidImport)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode facebook export: %w", err)
	}
	for _, key := range []string{"friends_v2", "friends"} {
		if v, ok := obj[key]; ok {
			return friendsList(v, depth+1)
		}
	}
	return nil, fmt.Errorf("%w: no friends list in export", domain.ErrInvalidImport)
}

// SourceCredit maps an import source to the credit the client may claim once the
// import is done. Manual adds have no credit.
func SourceCredit(s domain.FriendSource) (domain.CreditType, bool) {
	switch s {
	case domain.SourceFacebookImport:
		return domain.CreditFacebookImport, true
	case domain.SourceContactsImport:
		return domain.CreditContactsImport, true
	}
	return "", false
}
