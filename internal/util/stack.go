package util

// Container is a generic data structure that holds zero or more elements.
type Container[E any] interface {
	// Elements returns the contents of the container. No particular order is
	// guaranteed unless the concrete type says otherwise.
	Elements() []E
}

// Stack is a simple last-in-first-out stack of values. The zero value is an
// empty, usable stack.
type Stack[E any] struct {
	Of []E
}

// Push places v on top of the stack.
func (s *Stack[E]) Push(v E) {
	s.Of = append(s.Of, v)
}

// Pop removes and returns the top of the stack. It panics if the stack is
// empty; callers must check Empty() first if that is a possibility.
func (s *Stack[E]) Pop() E {
	top := s.Of[len(s.Of)-1]
	s.Of = s.Of[:len(s.Of)-1]
	return top
}

// Peek returns the top of the stack without removing it. It panics if the
// stack is empty.
func (s Stack[E]) Peek() E {
	return s.Of[len(s.Of)-1]
}

// Empty returns whether the stack has no elements.
func (s Stack[E]) Empty() bool {
	return len(s.Of) == 0
}

// Len returns the number of elements currently on the stack.
func (s Stack[E]) Len() int {
	return len(s.Of)
}

// Elements returns the stack contents bottom-to-top.
func (s Stack[E]) Elements() []E {
	return s.Of
}

// ArticleFor returns "a" or "an" depending on whether word begins with a
// vowel sound. If capital is true the article is capitalized.
func ArticleFor(word string, capital bool) string {
	article := "a"
	if len(word) > 0 {
		switch word[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capital {
		return string(article[0]-('a'-'A')) + article[1:]
	}
	return article
}
