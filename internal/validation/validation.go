package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/tweeklike/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOrderGap         ConflictType = "order_gap"
	ConflictDuplicateOrder   ConflictType = "duplicate_order"
	ConflictRuleAndParent    ConflictType = "rule_and_parent"
	ConflictLabelWithoutDate ConflictType = "label_without_date"
	ConflictOrphanInstance   ConflictType = "orphan_instance"
	ConflictInvalidField     ConflictType = "invalid_field"
)

// Conflict represents a detected problem in a stored collection
type Conflict struct {
	Type        ConflictType
	Description string
	Bucket      string   // Human-readable bucket (if applicable)
	TaskIDs     []string // IDs of tasks involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks a whole task collection against the store's invariants.
// Collections normally satisfy them; this exists for files edited by hand or
// written by older versions.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateTasks checks every task and every bucket
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	buckets := make(map[string][]models.Task)
	for _, t := range tasks {
		if t.IsTemplate() && t.IsInstance() {
			result.add(ConflictRuleAndParent, "", []string{t.ID},
				"Task %q carries both a recurrence rule and a parent", t.Title)
		}
		if t.IsLabel && t.Date.IsSomeday() {
			result.add(ConflictLabelWithoutDate, "", []string{t.ID},
				"Label %q has no date", t.Title)
		}
		if t.IsInstance() && !ids[t.RecurringParentID] {
			result.add(ConflictOrphanInstance, "", []string{t.ID},
				"Instance %q points at missing template %s", t.Title, t.RecurringParentID)
		}
		if !t.Category.Valid() {
			result.add(ConflictInvalidField, "", []string{t.ID},
				"Task %q has unknown category %q", t.Title, t.Category)
		}
		key := bucketName(t)
		buckets[key] = append(buckets[key], t)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v.checkBucket(&result, name, buckets[name])
	}
	return result
}

func (v *Validator) checkBucket(result *ValidationResult, name string, tasks []models.Task) {
	byOrder := make(map[int][]string)
	for _, t := range tasks {
		byOrder[t.Order] = append(byOrder[t.Order], t.ID)
	}

	for order, ids := range byOrder {
		if len(ids) > 1 {
			sort.Strings(ids)
			result.add(ConflictDuplicateOrder, name, ids,
				"Bucket %s has %d tasks at position %d", name, len(ids), order)
		}
	}

	for i := 0; i < len(tasks); i++ {
		if _, ok := byOrder[i]; !ok {
			result.add(ConflictOrderGap, name, nil,
				"Bucket %s is missing position %d", name, i)
			return
		}
	}
}

func (vr *ValidationResult) add(kind ConflictType, bucket string, ids []string, format string, args ...interface{}) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        kind,
		Description: fmt.Sprintf(format, args...),
		Bucket:      bucket,
		TaskIDs:     ids,
	})
}

func bucketName(t models.Task) string {
	switch {
	case t.IsLabel:
		return "labels/" + t.Date.String()
	case t.Date.IsSomeday():
		return "someday"
	default:
		return t.Date.String() + "/" + string(t.Category)
	}
}
