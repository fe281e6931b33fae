package outbox

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "sport": {"type": "string"},
    "start_date": {"type": "string", "format": "date-time"},
    "level": {"type": "string"},
    "spot_count": {"type": "integer"},
    "price_per_person": {"type": "number"},
    "organizer_id": {"type": "string"},
    "address": {"type": "string"},
    "latitude": {"type": "number"},
    "longitude": {"type": "number"}
  },
  "required": ["activity_id", "sport", "start_date", "level", "spot_count", "organizer_id"],
  "additionalProperties": false
}`

const activityCanceledSchema = `{
  "type": "object",
  "title": "ActivityCanceled",
  "properties": {
    "activity_id": {"type": "string"},
    "organizer_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "organizer_id", "occurred_at"],
  "additionalProperties": false
}`

const userUpsertedSchema = `{
  "type": "object",
  "title": "UserUpserted",
  "properties": {
    "user_id": {"type": "string"},
    "profile_url": {"type": "string"},
    "full_name": {"type": "string"},
    "about_me": {"type": "string"},
    "following_ids": {"type": "array", "items": {"type": "string"}},
    "activity_ids": {"type": "array", "items": {"type": "string"}},
    "updated_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "full_name", "following_ids", "activity_ids", "updated_at"],
  "additionalProperties": false
}`

// schemaCatalog maps event types to their JSON schema documents.
var schemaCatalog = map[string]string{
	"activity.created":  activityCreatedSchema,
	"activity.canceled": activityCanceledSchema,
	"user.upserted":     userUpsertedSchema,
}

// topicSubjects maps each event topic to its registry subject, following the
// TopicNameStrategy convention of <topic>-value.
var topicSubjects = map[string]string{
	"activity_events": "activity_events-value",
	"user_events":     "user_events-value",
}

func catalogTopics() []string {
	topics := make([]string, 0, len(topicSubjects))
	for topic := range topicSubjects {
		topics = append(topics, topic)
	}
	return topics
}

func knownSubject(subject string) bool {
	for _, candidate := range topicSubjects {
		if candidate == subject {
			return true
		}
	}
	return false
}
