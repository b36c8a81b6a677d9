// Package navigation keeps the stack of popovers shown over the chat screen.
package navigation

import "ragchat/src/components/modals"

// Stack is a LIFO of open modals. Only the top one receives keys.
type Stack struct {
	items []modals.Modal
}

// Push opens m on top of the stack.
func (s *Stack) Push(m modals.Modal) {
	s.items = append(s.items, m)
	m.Open()
}

// Pop removes the top modal without closing it; callers use it from CloseSelf.
func (s *Stack) Pop() modals.Modal {
	n := len(s.items)
	if n == 0 {
		return nil
	}
	top := s.items[n-1]
	s.items = s.items[:n-1]
	return top
}

// Top returns the active modal, or nil.
func (s *Stack) Top() modals.Modal {
	if n := len(s.items); n > 0 {
		return s.items[n-1]
	}
	return nil
}

func (s *Stack) Len() int { return len(s.items) }

// Reset closes every modal, top first.
func (s *Stack) Reset() {
	for s.Len() > 0 {
		top := s.Top()
		if top.IsOpen() {
			// Close runs CloseSelf, which pops.
			top.Close()
		}
		if s.Top() == top {
			s.Pop()
		}
	}
}
