package graph

import (
	"context"
	"strings"
)

// Default result caps for the targeted and generic query templates.
const (
	// DefaultSearchLimit caps generic keyword search results.
	DefaultSearchLimit = 5

	// DefaultTargetLimit caps the high-value target ranking.
	DefaultTargetLimit = 10

	// attackPathLimit caps shortest-path results, ascending by path length.
	attackPathLimit = 10
)

// adminGroupPattern matches domain-admin style group names. Part of the fixed
// schema vocabulary, not user input.
const adminGroupPattern = "(?i).*DOMAIN ADMINS.*"

const rdpAccessQuery = `
MATCH (u:User {name: $name})-[:CanRDP]->(c:Computer)
RETURN c.name AS computer`

const groupMembershipQuery = `
MATCH (u:User {name: $name})-[:MemberOf]->(g:Group)
RETURN g.name AS group_name, g.description AS description`

const attackPathQuery = `
MATCH path = shortestPath((u:User)-[:MemberOf|HasSession|AdminTo|CanRDP*1..]->(target))
WHERE target.name = $target AND u.enabled = true
RETURN
    [node IN nodes(path) | node.name] AS path_nodes,
    [rel IN relationships(path) | type(rel)] AS path_relationships,
    length(path) AS path_length
ORDER BY path_length ASC
LIMIT $limit`

const highValueTargetQuery = `
MATCH (c:Computer)
WITH c, count{ (c)<-[:AdminTo]-() } AS inAdminCount
ORDER BY inAdminCount DESC
LIMIT $limit
MATCH (c)<-[:AdminTo]-(u:User)
RETURN
    c.name AS computer_name,
    inAdminCount AS admin_access_count,
    collect(u.name) AS admin_users
ORDER BY admin_access_count DESC`

const domainAdminQuery = `
MATCH (u:User)-[:MemberOf]->(g:Group)
WHERE g.name =~ $pattern
RETURN u.name AS username, u.enabled AS enabled, u.description AS description`

const kerberoastableQuery = `
MATCH (u:User)
WHERE u.hasspn = true
RETURN u.name AS username, u.description AS description`

const keywordSearchQuery = `
MATCH (node)
WHERE any(term IN $terms WHERE
    toLower(coalesce(node.name, '')) CONTAINS term OR
    toLower(coalesce(node.description, '')) CONTAINS term)
WITH node,
    CASE WHEN toLower(coalesce(node.name, '')) CONTAINS $query THEN 3
         WHEN toLower(coalesce(node.description, '')) CONTAINS $query THEN 2
         ELSE 1
    END AS relevance
OPTIONAL MATCH (node)-[r]-(related)
RETURN
    node.name AS name,
    node.description AS description,
    labels(node) AS labels,
    relevance AS score,
    collect({
        type: type(r),
        name: related.name,
        description: related.description
    }) AS relationships
ORDER BY relevance DESC
LIMIT $limit`

// RDPAccess returns the computers the named principal can reach over RDP.
func (c *Client) RDPAccess(ctx context.Context, principal string) []Record {
	return c.run(ctx, "rdp_access", rdpAccessQuery, map[string]any{"name": principal})
}

// GroupMemberships returns the groups the named principal belongs to.
func (c *Client) GroupMemberships(ctx context.Context, principal string) []Record {
	return c.run(ctx, "group_memberships", groupMembershipQuery, map[string]any{"name": principal})
}

// AttackPaths returns the shortest attack paths from any enabled principal to
// the target host, ascending by path length, capped at 10. Ties keep the
// engine's return order.
func (c *Client) AttackPaths(ctx context.Context, target string) []Record {
	return c.run(ctx, "attack_paths", attackPathQuery, map[string]any{
		"target": target,
		"limit":  attackPathLimit,
	})
}

// HighValueTargets ranks hosts by inbound administrative edge count and pairs
// each with its admin principals.
func (c *Client) HighValueTargets(ctx context.Context, limit int) []Record {
	if limit <= 0 {
		limit = DefaultTargetLimit
	}
	return c.run(ctx, "high_value_targets", highValueTargetQuery, map[string]any{"limit": limit})
}

// DomainAdmins returns the principals belonging to a domain-admin group.
func (c *Client) DomainAdmins(ctx context.Context) []Record {
	return c.run(ctx, "domain_admins", domainAdminQuery, map[string]any{"pattern": adminGroupPattern})
}

// Kerberoastable returns principals flagged with a service principal name,
// making them vulnerable to Kerberoasting.
func (c *Client) Kerberoastable(ctx context.Context) []Record {
	return c.run(ctx, "kerberoastable", kerberoastableQuery, nil)
}

// KeywordSearch runs a substring relevance query across all node types. Score
// rises with substring matches in name or description fields; an exact
// full-query match weighs highest. Results are ordered descending by score and
// capped at limit.
func (c *Client) KeywordSearch(ctx context.Context, query string, limit int) []Record {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return c.run(ctx, "keyword_search", keywordSearchQuery, map[string]any{
		"terms": searchTerms(query),
		"query": strings.ToLower(query),
		"limit": limit,
	})
}

// searchTerms lowercases the query and keeps tokens longer than three
// characters as search terms.
func searchTerms(query string) []string {
	terms := []string{}
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) > 3 {
			terms = append(terms, word)
		}
	}
	return terms
}
