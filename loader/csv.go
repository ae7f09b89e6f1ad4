package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for loader input handling.
var (
	// ErrMissingColumn indicates the CSV header lacks a required column.
	ErrMissingColumn = errors.New("loader: required column missing")
)

// DefaultBatchSize is the number of incidents written per transaction.
const DefaultBatchSize = 100

// Required CSV header columns. Matching is exact.
const (
	colCountry        = "Country"
	colYear           = "Year"
	colAttackType     = "Attack Type"
	colIndustry       = "Target Industry"
	colFinancialLoss  = "Financial Loss (in Million $)"
	colAffectedUsers  = "Number of Affected Users"
	colAttackSource   = "Attack Source"
	colVulnerability  = "Security Vulnerability Type"
	colDefense        = "Defense Mechanism Used"
	colResolutionTime = "Incident Resolution Time (in Hours)"
)

// Incident is one row of the threat dataset.
type Incident struct {
	ID             string
	Country        string
	Year           int
	AttackType     string
	Industry       string
	AttackSource   string
	Vulnerability  string
	Defense        string
	FinancialLoss  float64
	AffectedUsers  int
	ResolutionTime int
}

// Writer is the graph write operation the loaders depend on.
type Writer interface {
	Write(ctx context.Context, cypher string, params map[string]any) error
}

// Loader bulk-imports datasets through a graph writer.
type Loader struct {
	writer    Writer
	batchSize int
	log       *slog.Logger
}

// New creates a loader. batchSize caps incidents per transaction; zero or
// negative selects the default.
func New(writer Writer, batchSize int, logger *slog.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		writer:    writer,
		batchSize: batchSize,
		log:       logger.With("component", "loader"),
	}
}

// ParseIncidents reads the threat CSV. The first row must be a header naming
// all required columns; column order is free. Each incident is assigned a
// fresh unique identifier.
func ParseIncidents(r io.Reader) ([]Incident, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	required := []string{
		colCountry, colYear, colAttackType, colIndustry, colFinancialLoss,
		colAffectedUsers, colAttackSource, colVulnerability, colDefense,
		colResolutionTime,
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var incidents []Incident
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[index[colYear]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing year: %w", line, err)
		}
		loss, err := strconv.ParseFloat(strings.TrimSpace(row[index[colFinancialLoss]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing financial loss: %w", line, err)
		}
		users, err := strconv.Atoi(strings.TrimSpace(row[index[colAffectedUsers]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing affected users: %w", line, err)
		}
		resolution, err := strconv.Atoi(strings.TrimSpace(row[index[colResolutionTime]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing resolution time: %w", line, err)
		}

		incidents = append(incidents, Incident{
			ID:             uuid.NewString(),
			Country:        strings.TrimSpace(row[index[colCountry]]),
			Year:           year,
			AttackType:     strings.TrimSpace(row[index[colAttackType]]),
			Industry:       strings.TrimSpace(row[index[colIndustry]]),
			AttackSource:   strings.TrimSpace(row[index[colAttackSource]]),
			Vulnerability:  strings.TrimSpace(row[index[colVulnerability]]),
			Defense:        strings.TrimSpace(row[index[colDefense]]),
			FinancialLoss:  loss,
			AffectedUsers:  users,
			ResolutionTime: resolution,
		})
	}
	return incidents, nil
}

const mergeEntityQuery = `
UNWIND $names AS name
MERGE (n:%s {name: name})`

const mergeYearQuery = `
UNWIND $years AS year
MERGE (y:Year {value: year})`

const createIncidentsQuery = `
UNWIND $incidents AS incident
CREATE (i:Incident {
    id: incident.id,
    financial_loss: incident.financial_loss,
    affected_users: incident.affected_users,
    resolution_time: incident.resolution_time
})
WITH i, incident
MATCH (c:Country {name: incident.country})
CREATE (i)-[:OCCURRED_IN]->(c)
WITH i, incident
MATCH (y:Year {value: incident.year})
CREATE (i)-[:HAPPENED_IN]->(y)
WITH i, incident
MATCH (a:AttackType {name: incident.attack_type})
CREATE (i)-[:USED_ATTACK]->(a)
WITH i, incident
MATCH (ind:Industry {name: incident.industry})
CREATE (i)-[:TARGETED]->(ind)
WITH i, incident
MATCH (s:AttackSource {name: incident.attack_source})
CREATE (i)-[:ORIGINATED_FROM]->(s)
WITH i, incident
MATCH (v:Vulnerability {name: incident.vulnerability})
CREATE (i)-[:EXPLOITED]->(v)
WITH i, incident
MATCH (d:Defense {name: incident.defense})
CREATE (i)-[:DEFENDED_WITH]->(d)`

// Derived edges aggregate incident counts into direct relationships between
// entity nodes, so common analytical traversals skip the incident hop.
var derivedEdgeQueries = []string{
	`MATCH (a:AttackType)<-[:USED_ATTACK]-(i:Incident)-[:EXPLOITED]->(v:Vulnerability)
WITH a, v, count(i) AS frequency
MERGE (a)-[r:EXPLOITS]->(v)
SET r.frequency = frequency`,
	`MATCH (c:Country)<-[:OCCURRED_IN]-(i:Incident)-[:ORIGINATED_FROM]->(s:AttackSource)
WITH c, s, count(i) AS frequency
MERGE (c)-[r:EXPERIENCED_ATTACKS_FROM]->(s)
SET r.frequency = frequency`,
	`MATCH (d:Defense)<-[:DEFENDED_WITH]-(i:Incident)-[:EXPLOITED]->(v:Vulnerability)
WITH d, v, count(i) AS frequency
MERGE (d)-[r:PROTECTS_AGAINST]->(v)
SET r.frequency = frequency`,
}

// LoadIncidents writes parsed incidents into the graph: entity nodes first,
// then incident nodes with their relationships in batches, then the derived
// frequency edges. Returns the number of incidents written.
func (l *Loader) LoadIncidents(ctx context.Context, incidents []Incident) (int, error) {
	if len(incidents) == 0 {
		return 0, nil
	}

	if err := l.mergeEntities(ctx, incidents); err != nil {
		return 0, err
	}

	for start := 0; start < len(incidents); start += l.batchSize {
		end := start + l.batchSize
		if end > len(incidents) {
			end = len(incidents)
		}
		batch := incidents[start:end]

		params := make([]map[string]any, 0, len(batch))
		for _, inc := range batch {
			params = append(params, map[string]any{
				"id":              inc.ID,
				"financial_loss":  inc.FinancialLoss,
				"affected_users":  inc.AffectedUsers,
				"resolution_time": inc.ResolutionTime,
				"country":         inc.Country,
				"year":            inc.Year,
				"attack_type":     inc.AttackType,
				"industry":        inc.Industry,
				"attack_source":   inc.AttackSource,
				"vulnerability":   inc.Vulnerability,
				"defense":         inc.Defense,
			})
		}
		if err := l.writer.Write(ctx, createIncidentsQuery, map[string]any{"incidents": params}); err != nil {
			return start, fmt.Errorf("writing incident batch at %d: %w", start, err)
		}
		l.log.Info("incident batch written", "count", len(batch))
	}

	for _, query := range derivedEdgeQueries {
		if err := l.writer.Write(ctx, query, nil); err != nil {
			return len(incidents), fmt.Errorf("writing derived edges: %w", err)
		}
	}
	return len(incidents), nil
}

// LoadCSV parses and loads the threat CSV in one call.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	incidents, err := ParseIncidents(r)
	if err != nil {
		return 0, err
	}
	return l.LoadIncidents(ctx, incidents)
}

// mergeEntities creates the unique entity nodes referenced by the incidents.
func (l *Loader) mergeEntities(ctx context.Context, incidents []Incident) error {
	entities := map[string][]string{
		"Country":       uniqueStrings(incidents, func(i Incident) string { return i.Country }),
		"AttackType":    uniqueStrings(incidents, func(i Incident) string { return i.AttackType }),
		"Industry":      uniqueStrings(incidents, func(i Incident) string { return i.Industry }),
		"AttackSource":  uniqueStrings(incidents, func(i Incident) string { return i.AttackSource }),
		"Vulnerability": uniqueStrings(incidents, func(i Incident) string { return i.Vulnerability }),
		"Defense":       uniqueStrings(incidents, func(i Incident) string { return i.Defense }),
	}

	for label, names := range entities {
		query := fmt.Sprintf(mergeEntityQuery, label)
		if err := l.writer.Write(ctx, query, map[string]any{"names": names}); err != nil {
			return fmt.Errorf("merging %s nodes: %w", label, err)
		}
	}

	years := uniqueYears(incidents)
	if err := l.writer.Write(ctx, mergeYearQuery, map[string]any{"years": years}); err != nil {
		return fmt.Errorf("merging Year nodes: %w", err)
	}
	return nil
}

func uniqueStrings(incidents []Incident, pick func(Incident) string) []string {
	seen := make(map[string]struct{}, len(incidents))
	var out []string
	for _, inc := range incidents {
		v := pick(inc)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueYears(incidents []Incident) []int {
	seen := make(map[int]struct{}, len(incidents))
	var out []int
	for _, inc := range incidents {
		if _, dup := seen[inc.Year]; dup {
			continue
		}
		seen[inc.Year] = struct{}{}
		out = append(out, inc.Year)
	}
	return out
}
