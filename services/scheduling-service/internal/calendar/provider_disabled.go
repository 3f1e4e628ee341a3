//go:build !protogen

package calendar

// NewSyncProvider is a stub until the calendar-sync protobufs are
// generated (build with -tags protogen).
func NewSyncProvider(_ string) (Provider, error) {
	return nil, nil
}
