package cloudinary

import "testing"

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
		ok   bool
	}{
		{"plain", "https://res.cloudinary.com/demo/image/upload/v1712345678/realones/avatars/abc.jpg", "realones/avatars/abc", true},
		{"with transformation", "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_400,h_400,c_fill,g_face/v17/realones/avatars/abc.webp", "realones/avatars/abc", true},
		{"single param transformation", "https://res.cloudinary.com/demo/image/upload/w_400/realones/abc.png", "realones/abc", true},
		{"no version", "https://res.cloudinary.com/demo/image/upload/abc.png", "abc", true},
		{"foreign host", "https://example.com/image/upload/abc.png", "", false},
		{"no upload segment", "https://res.cloudinary.com/demo/image/abc.png", "", false},
		{"garbage", "://", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := PublicIDFromURL(tt.url)
			if id != tt.id || ok != tt.ok {
				t.Errorf("PublicIDFromURL(%q) = %q, %v; want %q, %v", tt.url, id, ok, tt.id, tt.ok)
			}
		})
	}
}

func TestBuildAvatarURL(t *testing.T) {
	got := BuildAvatarURL("demo", "realones/abc", 0)
	want := "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_400,h_400,c_fill,g_face/realones/abc"
	if got != want {
		t.Errorf("BuildAvatarURL = %q, want %q", got, want)
	}
}
