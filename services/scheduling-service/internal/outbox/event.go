package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the scheduling service.
const (
	TypeScheduleReplaced = "scheduling.schedule.replaced.v1"
	TypeEventCreated     = "scheduling.event.created.v1"
	TypeEventUpdated     = "scheduling.event.updated.v1"
	TypeEventDeleted     = "scheduling.event.deleted.v1"
)
