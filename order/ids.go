package order

// IDSet 订单 ID 集合。
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string)      { s[id] = struct{}{} }
func (s IDSet) Remove(id string)   { delete(s, id) }
func (s IDSet) Has(id string) bool { _, ok := s[id]; return ok }
func (s IDSet) Len() int           { return len(s) }

// List 返回 ID 切片（顺序不保证）。
func (s IDSet) List() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
