package graph

import "context"

// AnalyticalQuery is a named, predefined aggregate query over the whole graph.
// Analytical queries take no parameters derived from user input.
type AnalyticalQuery struct {
	// Name is the human-readable display name, also used for keyword-based
	// selection by the router.
	Name string

	// Cypher is the query body.
	Cypher string
}

// analyticalQueries is the registry of canned analytical queries over the
// threat-incident part of the graph.
var analyticalQueries = []AnalyticalQuery{
	{
		Name: "Top Attack Types by Financial Loss",
		Cypher: `
MATCH (a:AttackType)<-[:USED_ATTACK]-(i:Incident)
WITH a.name AS attackType, sum(i.financial_loss) AS totalLoss
RETURN attackType, totalLoss
ORDER BY totalLoss DESC
LIMIT 10`,
	},
	{
		Name: "Most Targeted Industries",
		Cypher: `
MATCH (ind:Industry)<-[:TARGETED]-(i:Incident)
WITH ind.name AS industry, count(i) AS incidents
RETURN industry, incidents
ORDER BY incidents DESC`,
	},
	{
		Name: "Most Common Vulnerabilities by Country",
		Cypher: `
MATCH (c:Country)<-[:OCCURRED_IN]-(i:Incident)-[:EXPLOITED]->(v:Vulnerability)
WITH c.name AS country, v.name AS vulnerability, count(*) AS frequency
ORDER BY country, frequency DESC
RETURN country, collect({vulnerability: vulnerability, frequency: frequency})[0..3] AS topVulnerabilities`,
	},
	{
		Name: "Most Effective Defense Mechanisms",
		Cypher: `
MATCH (d:Defense)<-[:DEFENDED_WITH]-(i:Incident)
WITH d.name AS defense, avg(i.resolution_time) AS avgResolutionTime
RETURN defense, avgResolutionTime
ORDER BY avgResolutionTime ASC
LIMIT 5`,
	},
	{
		Name: "Attack Trends Over Time",
		Cypher: `
MATCH (y:Year)<-[:HAPPENED_IN]-(i:Incident)-[:USED_ATTACK]->(a:AttackType)
WITH y.value AS year, a.name AS attackType, count(*) AS attacks
ORDER BY year, attacks DESC
RETURN year, collect({attackType: attackType, count: attacks})[0..3] AS topAttacks
ORDER BY year`,
	},
	{
		Name: "Countries Most Targeted by Nation-states",
		Cypher: `
MATCH (c:Country)<-[:OCCURRED_IN]-(i:Incident)-[:ORIGINATED_FROM]->(s:AttackSource {name: 'Nation-state'})
WITH c.name AS country, count(i) AS incidents
RETURN country, incidents
ORDER BY incidents DESC
LIMIT 10`,
	},
}

// AnalyticalQueries returns the canned analytical query registry. The returned
// slice is a copy; callers may reorder it freely.
func AnalyticalQueries() []AnalyticalQuery {
	out := make([]AnalyticalQuery, len(analyticalQueries))
	copy(out, analyticalQueries)
	return out
}

// Analytical exposes the registry from the client so consumers can depend on a
// single querier interface.
func (c *Client) Analytical() []AnalyticalQuery {
	return AnalyticalQueries()
}

// RunAnalytical executes one canned query and returns its rows. Like all
// retrieval reads, failures degrade to an empty result.
func (c *Client) RunAnalytical(ctx context.Context, q AnalyticalQuery) []Record {
	return c.run(ctx, "analytical:"+q.Name, q.Cypher, nil)
}
