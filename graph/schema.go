package graph

import "context"

// schemaStatements provisions uniqueness constraints and name indexes for both
// halves of the knowledge graph: the Active-Directory-style objects and the
// threat-incident entities. Duplicate-name nodes are a data-integrity
// precondition violation everywhere else in this package, so provisioning runs
// before any data load.
var schemaStatements = []string{
	// Active-Directory-style objects.
	"CREATE CONSTRAINT IF NOT EXISTS FOR (u:User) REQUIRE u.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Computer) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (g:Group) REQUIRE g.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Domain) REQUIRE d.name IS UNIQUE",

	// Threat-incident entities.
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Country) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (a:AttackType) REQUIRE a.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (i:Industry) REQUIRE i.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (s:AttackSource) REQUIRE s.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (v:Vulnerability) REQUIRE v.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Defense) REQUIRE d.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (y:Year) REQUIRE y.value IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (i:Incident) REQUIRE i.id IS UNIQUE",

	// Search indexes.
	"CREATE INDEX IF NOT EXISTS FOR (n:User) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Computer) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Group) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Domain) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Country) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:AttackType) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Industry) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Vulnerability) ON (n.name)",
	"CREATE INDEX IF NOT EXISTS FOR (n:Incident) ON (n.id)",
}

// EnsureSchema creates the uniqueness constraints and indexes the access layer
// assumes. Safe to run repeatedly.
func (c *Client) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := c.Write(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}
