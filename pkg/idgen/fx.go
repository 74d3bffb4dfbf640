// Package idgen provides the process-wide snowflake node used for
// primary key generation.
package idgen

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("idgen",
	fx.Provide(NewNode),
)

// NewNode derives a stable node id from the hostname so replicas do
// not mint colliding ids.
func NewNode() (*snowflake.Node, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "nyumba"
	}
	h := fnv.New32a()
	h.Write([]byte(host))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}
