package models

import (
	"testing"
	"time"
)

func TestToken(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	t.Run("Expired", func(t *testing.T) {
		tc := []struct {
			name      string
			expiresAt time.Time
			want      bool
		}{
			{name: "future", expiresAt: now.Add(time.Minute), want: false},
			{name: "exactly now", expiresAt: now, want: true},
			{name: "past", expiresAt: now.Add(-time.Second), want: true},
			{name: "zero", expiresAt: time.Time{}, want: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				tok := Token{AccessToken: "a", ExpiresAt: tt.expiresAt}
				if got := tok.Expired(now); got != tt.want {
					t.Errorf("Expired() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("CanRefresh", func(t *testing.T) {
		if (Token{}).CanRefresh() {
			t.Error("empty token should not be refreshable")
		}
		if !(Token{RefreshToken: "r"}).CanRefresh() {
			t.Error("token with refresh token should be refreshable")
		}
	})
}

func TestAuthState(t *testing.T) {
	if Unauthenticated.String() != "unauthenticated" {
		t.Errorf("unexpected string %s", Unauthenticated)
	}
	if AwaitingCallback.String() != "awaiting_callback" {
		t.Errorf("unexpected string %s", AwaitingCallback)
	}
	if Authenticated.String() != "authenticated" {
		t.Errorf("unexpected string %s", Authenticated)
	}
}

func TestTimeRange(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		want := map[TimeRange]string{
			ShortTerm:  "short_term",
			MediumTerm: "medium_term",
			LongTerm:   "long_term",
		}
		for r, s := range want {
			if r.String() != s {
				t.Errorf("expected %s, got %s", s, r.String())
			}
		}
	})

	t.Run("ParseTimeRange", func(t *testing.T) {
		tc := []struct {
			in   string
			want TimeRange
		}{
			{in: "short_term", want: ShortTerm},
			{in: "Short", want: ShortTerm},
			{in: "Last 4 Weeks", want: ShortTerm},
			{in: "medium", want: MediumTerm},
			{in: "", want: MediumTerm},
			{in: "long_term", want: LongTerm},
			{in: "All Time", want: LongTerm},
		}

		for _, tt := range tc {
			t.Run(tt.in, func(t *testing.T) {
				got, err := ParseTimeRange(tt.in)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got != tt.want {
					t.Errorf("ParseTimeRange(%q) = %v, want %v", tt.in, got, tt.want)
				}
			})
		}

		if _, err := ParseTimeRange("forever"); err == nil {
			t.Error("expected error for unknown range")
		}
	})

	t.Run("Next wraps", func(t *testing.T) {
		if ShortTerm.Next() != MediumTerm || MediumTerm.Next() != LongTerm || LongTerm.Next() != ShortTerm {
			t.Error("Next should cycle short -> medium -> long -> short")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		if TimeRange(7).Valid() {
			t.Error("out of range value should be invalid")
		}
		if !LongTerm.Valid() {
			t.Error("LongTerm should be valid")
		}
	})
}

func TestTrackPrimaryArtist(t *testing.T) {
	if (Track{}).PrimaryArtist() != "" {
		t.Error("expected empty primary artist")
	}
	tr := Track{Artists: []string{"Björk", "Arca"}}
	if tr.PrimaryArtist() != "Björk" {
		t.Errorf("expected Björk, got %s", tr.PrimaryArtist())
	}
}
