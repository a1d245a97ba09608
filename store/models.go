package store

// Memory is one free-form fact about a user. Value is stored as text;
// CreatedAt is immutable after the first write.
type Memory struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TravelPreference is one structured preference. Every value field is
// optional and independently settable; a preference holding nothing but a
// description (or nothing at all) is legitimate.
type TravelPreference struct {
	Key         string   `json:"key"`
	Value       *string  `json:"value,omitempty"`
	Values      []string `json:"values,omitempty"`
	MinValue    *float64 `json:"min_value,omitempty"`
	MaxValue    *float64 `json:"max_value,omitempty"`
	Description *string  `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// PreferenceFields carries the optional fields of a travel preference for
// store and update operations. Nil means "not provided".
type PreferenceFields struct {
	Value       *string
	Values      []string
	MinValue    *float64
	MaxValue    *float64
	Description *string
}

// UserRecord owns the two collections of a single user. The user id is the
// sole partition key; no operation touches another user's record.
type UserRecord struct {
	UserID            string                       `json:"user_id"`
	Memories          map[string]*Memory           `json:"memories"`
	TravelPreferences map[string]*TravelPreference `json:"travel_preferences"`
}

// Database maps user id to record. The whole mapping is the unit of
// persistence and of locking.
type Database map[string]*UserRecord

// UserSummary is the per-user view returned by ListUsers.
type UserSummary struct {
	UserID          string `json:"user_id"`
	MemoryCount     int    `json:"memory_count"`
	PreferenceCount int    `json:"preference_count"`
}

func newUserRecord(userID string) *UserRecord {
	return &UserRecord{
		UserID:            userID,
		Memories:          map[string]*Memory{},
		TravelPreferences: map[string]*TravelPreference{},
	}
}

func (db Database) ensure(userID string) *UserRecord {
	rec, ok := db[userID]
	if !ok {
		rec = newUserRecord(userID)
		db[userID] = rec
	}
	return rec
}

// normalize repairs nil maps and missing user ids after decoding.
func (db Database) normalize() {
	for id, rec := range db {
		if rec == nil {
			db[id] = newUserRecord(id)
			continue
		}
		if rec.UserID == "" {
			rec.UserID = id
		}
		if rec.Memories == nil {
			rec.Memories = map[string]*Memory{}
		}
		if rec.TravelPreferences == nil {
			rec.TravelPreferences = map[string]*TravelPreference{}
		}
	}
}
