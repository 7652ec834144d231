package policies

import "math"

// QTable maps state hash and action hash to a learned value
type QTable struct {
	table map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

func (q *QTable) HasState(state string) bool {
	_, ok := q.table[state]
	return ok
}

// Max returns the best action recorded for the state with its value,
// def when the state is unseen
func (q *QTable) Max(state string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok || len(q.table[state]) == 0 {
		return "", def
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range q.table[state] {
		if val > maxVal {
			maxVal = val
			maxAction = a
		}
	}
	return maxAction, maxVal
}

// MaxAmong returns the best of the given actions, initializing unseen
// entries to def
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if _, ok := q.table[state][a]; !ok {
			q.table[state][a] = def
		}
		if q.table[state][a] > maxVal {
			maxVal = q.table[state][a]
			maxAction = a
		}
	}
	return maxAction, maxVal
}

// Table exposes the raw values for artifact serialization
func (q *QTable) Table() map[string]map[string]float64 {
	return q.table
}

func (q *QTable) SetTable(table map[string]map[string]float64) {
	if table == nil {
		table = make(map[string]map[string]float64)
	}
	q.table = table
}
