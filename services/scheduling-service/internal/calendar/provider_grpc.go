//go:build protogen

package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/slotsmith/slotsmith/libs/grpcx"
	calendarsyncv1 "github.com/slotsmith/slotsmith/protos/gen/calendarsync/v1"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// grpcProvider asks the calendar-sync service for busy intervals it has
// mirrored from external calendars. Used in deployments where this
// service holds no calendar credentials of its own.
type grpcProvider struct {
	client calendarsyncv1.CalendarSyncServiceClient
}

func NewSyncProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: calendarsyncv1.NewCalendarSyncServiceClient(conn)}, nil
}

func (p *grpcProvider) BusyIntervals(ctx context.Context, userID string, start, end time.Time) ([]model.Interval, error) {
	resp, err := p.client.GetBusyIntervals(ctx, &calendarsyncv1.BusyIntervalsRequest{
		UserId:     userID,
		RangeStart: timestamppb.New(start),
		RangeEnd:   timestamppb.New(end),
	})
	if err != nil {
		return nil, fmt.Errorf("calendar-sync busy intervals for user %s: %w", userID, err)
	}

	var intervals []model.Interval
	for _, iv := range resp.GetIntervals() {
		if iv.GetStart() == nil || iv.GetEnd() == nil {
			continue
		}
		intervals = append(intervals, model.Interval{
			Start: iv.GetStart().AsTime(),
			End:   iv.GetEnd().AsTime(),
		})
	}
	return intervals, nil
}
