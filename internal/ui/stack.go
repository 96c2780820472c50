package ui

import tea "github.com/charmbracelet/bubbletea"

// ViewStack holds the drill-down path of a section. The bottom view is the
// section root and is never popped.
type ViewStack struct {
	views []View
}

// NewViewStack starts a stack at root.
func NewViewStack(root View) *ViewStack {
	return &ViewStack{views: []View{root}}
}

func (s *ViewStack) Push(v View) {
	s.views = append(s.views, v)
}

// Pop removes the top view unless it is the root. It returns the new top.
func (s *ViewStack) Pop() (View, bool) {
	if len(s.views) <= 1 {
		return s.Top(), false
	}
	s.views = s.views[:len(s.views)-1]
	return s.Top(), true
}

// Top is the view currently shown, or nil for an empty stack.
func (s *ViewStack) Top() View {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[len(s.views)-1]
}

// SetTop replaces the top view with the result of its Update.
func (s *ViewStack) SetTop(v View) {
	if len(s.views) == 0 {
		s.views = []View{v}
		return
	}
	s.views[len(s.views)-1] = v
}

func (s *ViewStack) Depth() int { return len(s.views) }

// UpdateWhere forwards msg to every view in the stack for which match is true.
func (s *ViewStack) UpdateWhere(match func(View) bool, msg tea.Msg) (tea.Cmd, bool) {
	var cmds []tea.Cmd
	found := false
	for i, v := range s.views {
		if !match(v) {
			continue
		}
		found = true
		nv, cmd := v.Update(msg)
		s.views[i] = nv
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...), found
}

// OverlayStack holds open modals; the topmost receives input first.
type OverlayStack struct {
	views []View
}

func (s *OverlayStack) Push(v View) { s.views = append(s.views, v) }

// Pop closes the topmost modal.
func (s *OverlayStack) Pop() bool {
	if len(s.views) == 0 {
		return false
	}
	s.views = s.views[:len(s.views)-1]
	return true
}

func (s *OverlayStack) Top() (View, bool) {
	if len(s.views) == 0 {
		return nil, false
	}
	return s.views[len(s.views)-1], true
}

func (s *OverlayStack) Len() int { return len(s.views) }

// Clear closes every modal.
func (s *OverlayStack) Clear() { s.views = nil }

// UpdateTop forwards msg to the topmost modal and stores the result.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.views) == 0 {
		return nil, false
	}
	top := len(s.views) - 1
	v, cmd := s.views[top].Update(msg)
	s.views[top] = v
	return cmd, true
}
