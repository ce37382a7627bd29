package services

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const PolicyIDPrefix = "SSST"

// PolicyIDGenerator issues policy numbers.
type PolicyIDGenerator interface {
	NewPolicyID() string
}

// SnowflakeIDGenerator yields SSST + uppercase base36 snowflake ids. Ids are
// unique per node as long as every instance runs with a distinct NODE_ID.
type SnowflakeIDGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeIDGenerator(nodeID int64) (*SnowflakeIDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeIDGenerator{node: node}, nil
}

func (g *SnowflakeIDGenerator) NewPolicyID() string {
	return PolicyIDPrefix + strings.ToUpper(g.node.Generate().Base36())
}
