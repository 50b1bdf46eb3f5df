package model

type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
	RoleMentioned Role = "mentioned"
)

const (
	DefaultEntityType   = "Topic"
	DefaultArtifactID   = 1
	DefaultCollectionID = "NewCollection"
	Unknown             = "Unknown"
)

type Artifact struct {
	ArtifactID        int      `json:"artifact_id"`
	Subject           string   `json:"subject"`
	Transcription     string   `json:"transcription"`
	SentDatetime      string   `json:"sent_datetime"`
	ArtifactPurpose   string   `json:"artifact_purpose"`
	ThreadID          *string  `json:"thread_id"`
	InReplyTo         *string  `json:"in_reply_to"`
	SourceFilename    *string  `json:"source_filename"`
	CollectionID      string   `json:"collection_id"`
	ExtractedDatetime string   `json:"extracted_datetime"`
	AutoSummary       *string  `json:"auto_summary"`
	ManualSummary     *string  `json:"manual_summary"`
	Tags              []string `json:"tags"`
}

type Person struct {
	PersonID     int     `json:"person_id"`
	FullName     string  `json:"full_name"`
	EmailAddress *string `json:"email_address"`
}

type ArtifactParticipant struct {
	ArtifactID int  `json:"artifact_id"`
	PersonID   int  `json:"person_id"`
	Role       Role `json:"role"`
}

type Entity struct {
	EntityID    int    `json:"entity_id"`
	EntityType  string `json:"entity_type"`
	EntityValue string `json:"entity_value"`
}

type ArtifactEntity struct {
	ArtifactID int     `json:"artifact_id"`
	EntityID   int     `json:"entity_id"`
	Context    *string `json:"context"`
}

type Location struct {
	LocationID   int      `json:"location_id"`
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type ArtifactLocation struct {
	ArtifactID int     `json:"artifact_id"`
	LocationID int     `json:"location_id"`
	Context    *string `json:"context"`
}

// CanonicalSchema is the deduplicated relational output of one reconciliation
// run. Every slice is non-nil so it serializes as an array.
type CanonicalSchema struct {
	Artifacts            []Artifact            `json:"artifacts"`
	People               []Person              `json:"people"`
	ArtifactParticipants []ArtifactParticipant `json:"artifact_participants"`
	Entities             []Entity              `json:"entities"`
	ArtifactEntities     []ArtifactEntity      `json:"artifact_entities"`
	Locations            []Location            `json:"locations"`
	ArtifactLocations    []ArtifactLocation    `json:"artifact_locations"`
}

type PersonAnnotation struct {
	PersonID int      `json:"person_id"`
	Vertices []Vertex `json:"vertices"`
}
