package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSite(t *testing.T) {
	s := NewSite("Vintage Denim Shop")
	assert.Equal(t, "Vintage Denim Shop", s.Prompt)
	assert.Equal(t, SiteStatusPending, s.Status)
	assert.Nil(t, s.Code)
	assert.False(t, s.HasCode())
}

func TestSiteStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to SiteStatus
		want     bool
	}{
		{SiteStatusPending, SiteStatusCompleted, true},
		{SiteStatusPending, SiteStatusFailed, true},
		{SiteStatusPending, SiteStatusPending, false},
		{SiteStatusCompleted, SiteStatusFailed, false},
		{SiteStatusCompleted, SiteStatusPending, false},
		{SiteStatusFailed, SiteStatusCompleted, false},
		{SiteStatusFailed, SiteStatusPending, false},
	}
	for _, c := range cases {
		t.Run(string(c.from)+"->"+string(c.to), func(t *testing.T) {
			assert.Equal(t, c.want, c.from.CanTransition(c.to))
		})
	}
}

func TestSitePatch_Apply(t *testing.T) {
	t.Run("completed patch sets code and status", func(t *testing.T) {
		s := NewSite("p")
		require.True(t, Completed("<html></html>").Apply(s))
		assert.Equal(t, SiteStatusCompleted, s.Status)
		require.NotNil(t, s.Code)
		assert.Equal(t, "<html></html>", *s.Code)
	})

	t.Run("failed patch leaves code nil", func(t *testing.T) {
		s := NewSite("p")
		require.True(t, Failed().Apply(s))
		assert.Equal(t, SiteStatusFailed, s.Status)
		assert.Nil(t, s.Code)
	})

	t.Run("terminal site rejects a second transition", func(t *testing.T) {
		s := NewSite("p")
		require.True(t, Failed().Apply(s))
		assert.False(t, Completed("<html></html>").Apply(s))
		assert.Equal(t, SiteStatusFailed, s.Status)
		assert.Nil(t, s.Code)
	})

	t.Run("patch code is copied", func(t *testing.T) {
		code := "<p>a</p>"
		s := NewSite("p")
		require.True(t, SitePatch{Code: &code}.Apply(s))
		code = "changed"
		assert.Equal(t, "<p>a</p>", *s.Code)
	})
}

func TestSiteStatus_Valid(t *testing.T) {
	assert.True(t, SiteStatusPending.Valid())
	assert.True(t, SiteStatusCompleted.Valid())
	assert.True(t, SiteStatusFailed.Valid())
	assert.False(t, SiteStatus("processing").Valid())
}
