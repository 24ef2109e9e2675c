package pricing

// IsAvailableNow decides whether an item with the given availability window
// can be ordered at now.
func IsAvailableNow(w Window, now TimeOfDay) bool {
	return w.Contains(now)
}
