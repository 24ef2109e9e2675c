package pricing

// Window is an optional [From, To] wall-clock range. Both bounds nil means
// unrestricted; exactly one bound set is malformed and never matches.
// From > To describes a range that crosses midnight.
type Window struct {
	From *TimeOfDay `json:"available_from"`
	To   *TimeOfDay `json:"available_to"`
}

// NewWindow builds a window from HH:MM:SS strings; an empty string is an
// absent bound.
func NewWindow(from, to string) (Window, error) {
	var w Window
	if from != "" {
		t, err := ParseTimeOfDay(from)
		if err != nil {
			return Window{}, err
		}
		w.From = &t
	}
	if to != "" {
		t, err := ParseTimeOfDay(to)
		if err != nil {
			return Window{}, err
		}
		w.To = &t
	}
	return w, nil
}

func Between(from, to TimeOfDay) Window {
	return Window{From: &from, To: &to}
}

func (w Window) Unrestricted() bool { return w.From == nil && w.To == nil }

func (w Window) Malformed() bool { return (w.From == nil) != (w.To == nil) }

func (w Window) SpansMidnight() bool {
	return w.From != nil && w.To != nil && *w.From > *w.To
}

// Contains reports whether now falls inside the window, both ends inclusive.
func (w Window) Contains(now TimeOfDay) bool {
	switch {
	case w.Unrestricted():
		return true
	case w.Malformed():
		return false
	}
	from, to := *w.From, *w.To
	if from <= to {
		return from <= now && now <= to
	}
	return now >= from || now <= to
}
