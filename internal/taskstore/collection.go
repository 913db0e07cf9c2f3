package taskstore

import (
	"sort"

	"github.com/julianstephens/tweeklike/internal/models"
)

// Collection is the canonical set of tasks keyed by id.
type Collection map[string]models.Task

// NewCollection builds a collection from a task list. Later duplicates of an
// id replace earlier ones.
func NewCollection(tasks []models.Task) Collection {
	c := make(Collection, len(tasks))
	for _, t := range tasks {
		c[t.ID] = t.Clone()
	}
	return c
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, t := range c {
		out[id] = t.Clone()
	}
	return out
}

// Tasks returns every task in display order.
func (c Collection) Tasks() []models.Task {
	out := make([]models.Task, 0, len(c))
	for _, t := range c {
		out = append(out, t.Clone())
	}
	sortTasks(out)
	return out
}

// BucketKey identifies the group a task's order is relative to.
type BucketKey struct {
	Date     models.Date
	Category models.Category
	Label    bool
}

// KeyOf returns the bucket t belongs to. Labels are grouped by date alone and
// every undated task shares one someday bucket.
func KeyOf(t models.Task) BucketKey {
	switch {
	case t.IsLabel:
		return BucketKey{Date: t.Date, Label: true}
	case t.Date.IsSomeday():
		return BucketKey{}
	default:
		return BucketKey{Date: t.Date, Category: t.Category}
	}
}

// bucketFor returns the key a task would have at the given position.
func bucketFor(isLabel bool, date models.Date, category models.Category) BucketKey {
	return KeyOf(models.Task{IsLabel: isLabel, Date: date, Category: category})
}

// Bucket returns the tasks in key ordered by position.
func (c Collection) Bucket(key BucketKey) []models.Task {
	var out []models.Task
	for _, t := range c {
		if KeyOf(t) == key {
			out = append(out, t)
		}
	}
	sortByOrder(out)
	return out
}

// size counts the tasks in key.
func (c Collection) size(key BucketKey) int {
	n := 0
	for _, t := range c {
		if KeyOf(t) == key {
			n++
		}
	}
	return n
}

// appendTo places t at the end of its bucket and stores it.
func (c Collection) appendTo(t models.Task) models.Task {
	t.Order = c.size(KeyOf(t))
	c[t.ID] = t
	return t
}

// densify renumbers key so its orders are 0..n-1, keeping relative order.
func (c Collection) densify(key BucketKey) {
	c.renumber(c.Bucket(key))
}

func (c Collection) renumber(ordered []models.Task) {
	for i, t := range ordered {
		if t.Order != i {
			t.Order = i
			c[t.ID] = t
		}
	}
}

// remove deletes ids and re-densifies every bucket they left.
func (c Collection) remove(ids ...string) {
	touched := make(map[BucketKey]struct{})
	for _, id := range ids {
		t, ok := c[id]
		if !ok {
			continue
		}
		touched[KeyOf(t)] = struct{}{}
		delete(c, id)
	}
	for key := range touched {
		c.densify(key)
	}
}

func sortByOrder(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// sortTasks orders dated tasks by day, then labels before tasks, then
// category and position. Someday tasks come last.
func sortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Date != b.Date {
			if a.Date.IsSomeday() || b.Date.IsSomeday() {
				return b.Date.IsSomeday()
			}
			return a.Date < b.Date
		}
		if a.IsLabel != b.IsLabel {
			return a.IsLabel
		}
		if !a.Date.IsSomeday() && a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}
