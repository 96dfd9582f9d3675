package utils

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewHandoffToken returns an opaque, sortable token identifying one sign-in hand-off.
func NewHandoffToken() string {
	return ksuid.New().String()
}

// NewSessionID generates a snowflake ID for an authenticated session. If the
// node cannot be initialized it falls back to a KSUID string.
func NewSessionID() string {
	nodeOnce.Do(func() {
		node, _ = snowflake.NewNode(1)
	})
	if node == nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}
