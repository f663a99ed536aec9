package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Tracker_Transitions(t *testing.T) {
	req := require.New(t)
	tr := NewTracker()

	// Unknown user: no record at all.
	_, ok := tr.Get("u-1")
	req.False(ok)

	tr.SetOnline("u-1")
	p, ok := tr.Get("u-1")
	req.True(ok)
	req.True(p.IsOnline)
	req.False(p.LastActiveAt.IsZero())

	tr.SetOffline("u-1")
	p, ok = tr.Get("u-1")
	req.True(ok)
	req.False(p.IsOnline)

	// Last write wins.
	tr.SetOnline("u-1")
	p, _ = tr.Get("u-1")
	req.True(p.IsOnline)
}

func Test_Tracker_Users_Are_Independent(t *testing.T) {
	req := require.New(t)
	tr := NewTracker()

	tr.SetOnline("u-1")
	tr.SetOffline("u-2")

	p1, _ := tr.Get("u-1")
	p2, _ := tr.Get("u-2")
	req.True(p1.IsOnline)
	req.False(p2.IsOnline)
}
