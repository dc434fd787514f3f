package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringifyNil(t *testing.T) {
	assert.Equal(t, "null", StringifyJson(nil))
}

func TestParseJsonFromBytes(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	assert.NoError(t, ParseJsonFromBytes([]byte(`{"name":"alice"}`), &v))
	assert.Equal(t, "alice", v.Name)
	assert.Error(t, ParseJsonFromBytes([]byte(`{"name":`), &v))
}

func TestTimer(t *testing.T) {
	timer := time.NewTimer(time.Millisecond)
	timer.Stop()
	select {
	case <- timer.C:
		t.Fatal("timer stopped")
	case <- time.After(2 * time.Millisecond):
	}
	timer.Reset(time.Millisecond)
	select {
	case <- timer.C:
	case <- time.After(20 * time.Millisecond):
		t.Fatal("timer reset not work")
	}
}

func TestRandANum(t *testing.T) {
	assert.Equal(t, 0, RandANum(0))
	assert.Equal(t, 0, RandANum(1))
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		n := RandANum(4)
		assert.True(t, n >= 0 && n < 4)
		seen[n] = true
	}
	assert.Len(t, seen, 4)
}

func TestRandRoomCode(t *testing.T) {
	code := RandRoomCode(6)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(roomCodeChars, c), "unexpected char %q", c)
	}
}

func TestRandID(t *testing.T) {
	a, b := RandID(8), RandID(8)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
