// AngelaMos | 2026
// entity.go

package knowledge

import (
	"strings"
)

type Entry struct {
	TenantID string `db:"tenant_id"`
	Key      string `db:"key"`
	Value    string `db:"value"`
	Enabled  bool   `db:"enabled"`
}

// Fact is one enabled key/value pair handed to the completion service.
type Fact struct {
	Key   string `db:"key"   json:"key"`
	Value string `db:"value" json:"value"`
}

// Context is a tenant's effective knowledge, sorted by key. An empty
// Context means the tenant has nothing enabled, which is not an error.
type Context []Fact

func (c Context) Empty() bool {
	return len(c) == 0
}

// Render formats the context as "key: value" lines.
func (c Context) Render() string {
	var b strings.Builder
	for i, f := range c {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}
