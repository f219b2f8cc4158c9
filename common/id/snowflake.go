package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// The server uses node 1 and the worker node 2.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns a new ID in its base-10 string form. Records are keyed by
// string ids so that identity-provider user ids and generated ids share a type.
func NewString() string {
	return node.Generate().String()
}
