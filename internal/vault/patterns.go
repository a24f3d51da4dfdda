package vault

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/graph"
)

// AutoLearnedTag marks nodes produced by pattern extraction rather than
// an explicit agent decision.
const AutoLearnedTag = "auto-learned"

// detectedConfidence is the starting trust for catalog-detected
// patterns; below the default so unverified detections rank lower.
const detectedConfidence = 0.7

// codeDetector is one entry in the fixed trigger catalog. A detector
// fires when any of its triggers appears in the scanned code.
type codeDetector struct {
	name     string
	triggers []string
	content  string
	tags     []string
}

var codeDetectors = []codeDetector{
	{
		name:     "auth-guard",
		triggers: []string{"requireAuth(", "RequireAuth(", "ensureAuthenticated(", "@authenticated"},
		content:  "Routes are protected with an authentication guard before any handler logic runs",
		tags:     []string{"security", "auth"},
	},
	{
		name:     "tenant-isolation",
		triggers: []string{"tenant_id", "tenantId", "TenantID"},
		content:  "Every persisted record carries a tenant identifier for row-level isolation",
		tags:     []string{"security", "multi-tenancy"},
	},
	{
		name:     "try-catch",
		triggers: []string{"try {", "} catch", "catch ("},
		content:  "Fallible calls are wrapped in try/catch blocks instead of letting errors escape",
		tags:     []string{"error-handling"},
	},
	{
		name:     "typed-errors",
		triggers: []string{"errors.New(", "errors.Is(", "instanceof Error", "extends Error"},
		content:  "Failures are modeled as typed error values that callers can branch on",
		tags:     []string{"error-handling"},
	},
	{
		name:     "schema-validation",
		triggers: []string{".parse(", ".safeParse(", "validate(", "Validate("},
		content:  "External input is run through schema validation before use",
		tags:     []string{"validation"},
	},
	{
		name:     "explicit-interfaces",
		triggers: []string{"interface ", "implements "},
		content:  "Component boundaries are declared as explicit interfaces rather than concrete types",
		tags:     []string{"architecture"},
	},
	{
		name:     "integer-truncation",
		triggers: []string{"Math.trunc(", "math.Trunc(", "Math.floor("},
		content:  "Fractional values are truncated explicitly instead of relying on implicit coercion",
		tags:     []string{"numerics"},
	},
	{
		name:     "ui-state-hooks",
		triggers: []string{"useState(", "useReducer(", "useEffect("},
		content:  "UI state lives in dedicated state hooks rather than ad-hoc mutable fields",
		tags:     []string{"frontend"},
	},
	{
		name:     "index-creation",
		triggers: []string{"CREATE INDEX", "createIndex(", "ensureIndex("},
		content:  "Query paths are backed by explicit index creation on the hot columns",
		tags:     []string{"database"},
	},
	{
		name:     "test-suite-structure",
		triggers: []string{"describe(", "it(", "func Test"},
		content:  "Behavior is pinned by a structured test suite alongside the implementation",
		tags:     []string{"testing"},
	},
}

// DetectPatterns scans code against the fixed trigger catalog and
// records one pattern node per firing detector. Detections insert
// directly into the store, bypassing conflict detection and tier
// eviction: they are mechanical observations, not agent claims.
func (m *Manager) DetectPatterns(code, language string) []*graph.MemoryNode {
	var detected []*graph.MemoryNode
	for _, d := range codeDetectors {
		if !matchesAny(code, d.triggers) {
			continue
		}
		node, err := m.store.AddNode(graph.NodeInput{
			Kind:       graph.KindPattern,
			Content:    d.content,
			Confidence: detectedConfidence,
			Language:   language,
			Tags:       append(append([]string{}, d.tags...), AutoLearnedTag),
		})
		if err != nil {
			m.logger.Warn("failed to record detected pattern",
				zap.String("detector", d.name), zap.Error(err))
			continue
		}
		detected = append(detected, node)
	}
	return detected
}

func matchesAny(code string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(code, t) {
			return true
		}
	}
	return false
}

// buildDetector maps keywords in successful build output to a reusable
// strategy statement.
type buildDetector struct {
	triggers []string
	content  string
}

var buildDetectors = []buildDetector{
	{
		triggers: []string{"requireAuth(", "RequireAuth(", "ensureAuthenticated("},
		content:  "Guard new endpoints with the authentication check before business logic",
	},
	{
		triggers: []string{"tenant_id", "tenantId", "TenantID"},
		content:  "Thread the tenant identifier through every new query and schema",
	},
	{
		triggers: []string{".parse(", ".safeParse(", "Validate("},
		content:  "Validate request payloads against the schema before acting on them",
	},
	{
		triggers: []string{"math.Trunc(", "Math.trunc("},
		content:  "Truncate fractional quantities explicitly when converting to integers",
	},
}

// LearnFromBuildResult turns a completed agent task into taste memory.
// Successful builds yield a task-level strategy, an agent-specific
// strategy, and one pattern per matched build detector, all tagged as
// auto-learned. Failed builds yield a single mistake node summarizing
// the task so the same approach is down-ranked next time.
func (m *Manager) LearnFromBuildResult(title, description, output, agentID string, success bool) ([]*graph.MemoryNode, error) {
	if !success {
		node, err := m.Learn(graph.KindMistake,
			fmt.Sprintf("Build failed for %q: %s", title, description),
			LearnOptions{Tags: []string{AutoLearnedTag, "build-result"}})
		if err != nil {
			return nil, err
		}
		return []*graph.MemoryNode{node}, nil
	}

	var learned []*graph.MemoryNode

	generic, err := m.Learn(graph.KindStrategy,
		fmt.Sprintf("Completed %q successfully: %s", title, description),
		LearnOptions{Tags: []string{AutoLearnedTag, "build-result"}})
	if err != nil {
		return nil, err
	}
	learned = append(learned, generic)

	if agentID != "" {
		agentSpecific, err := m.Learn(graph.KindStrategy,
			fmt.Sprintf("Agent %s approach worked for %q: %s", agentID, title, description),
			LearnOptions{Tags: []string{AutoLearnedTag, "build-result", "agent:" + agentID}})
		if err == nil {
			learned = append(learned, agentSpecific)
		} else {
			m.logger.Warn("failed to learn agent-specific pattern", zap.Error(err))
		}
	}

	for _, d := range buildDetectors {
		if !matchesAny(output, d.triggers) {
			continue
		}
		node, err := m.Learn(graph.KindPattern, d.content,
			LearnOptions{Tags: []string{AutoLearnedTag, "build-result"}})
		if err != nil {
			m.logger.Warn("failed to learn build pattern", zap.Error(err))
			continue
		}
		learned = append(learned, node)
	}
	return learned, nil
}
