package models

import "time"

// User is a profile referenced by bans. Name and avatar fields are filled by the
// profile refresher; the reputation and export fields are derived from bans.
// A nil LastRefreshed* timestamp marks the corresponding derived data as stale.
type User struct {
	ID           string `gorm:"column:id;primaryKey;size:32"`
	Name         string `gorm:"column:name;size:255"`
	Avatar       string `gorm:"column:avatar;size:512"`
	AvatarMedium string `gorm:"column:avatar_medium;size:512"`
	AvatarFull   string `gorm:"column:avatar_full;size:512"`
	ProfileURL   string `gorm:"column:profile_url;size:512"`

	LastRefreshedInfo             *time.Time `gorm:"column:last_refreshed_info;index"`
	LastRefreshedReputationPoints *time.Time `gorm:"column:last_refreshed_reputation_points;index"`
	LastRefreshedReputationRank   *time.Time `gorm:"column:last_refreshed_reputation_rank"`
	LastRefreshedExport           *time.Time `gorm:"column:last_refreshed_export;index"`

	ReputationPoints            int  `gorm:"column:reputation_points;not null;default:0"`
	ReputationPointsMonthBefore int  `gorm:"column:reputation_points_month_before;not null;default:0"`
	ReputationPointsMonthChange int  `gorm:"column:reputation_points_month_change;not null;default:0"`
	ReputationRank              *int `gorm:"column:reputation_rank"`
}

// TableName overrides the table name.
func (User) TableName() string {
	return "users"
}

// Provider types.
const (
	ProviderJSONFeed     = "json-feed"
	ProviderBucketDump   = "bucket-dump"
	ProviderBucketExport = "bucket-export"
)

// BanSourceList is an external list. Ingest lists are read by the importer;
// export lists receive published users.
type BanSourceList struct {
	ID                  string `gorm:"column:id;primaryKey;size:64" yaml:"id"`
	Name                string `gorm:"column:name;size:255" yaml:"name"`
	Provider            string `gorm:"column:provider;size:32" yaml:"provider"`
	URL                 string `gorm:"column:url;size:1024" yaml:"url"`
	NotificationChannel string `gorm:"column:notification_channel;size:1024" yaml:"notification_channel"`
	MinPoints           int    `gorm:"column:min_points;not null;default:0" yaml:"min_points"`
}

// TableName overrides the table name.
func (BanSourceList) TableName() string {
	return "ban_source_lists"
}

// IsExport reports whether the list is an export target rather than a source.
func (l BanSourceList) IsExport() bool {
	return l.Provider == ProviderBucketExport
}

// Ban is one record from a ban list. ID is assigned by the source.
type Ban struct {
	ID        string     `gorm:"column:id;primaryKey;size:128"`
	ListID    string     `gorm:"column:list_id;size:64;index"`
	UserID    string     `gorm:"column:user_id;size:32;index"`
	Created   time.Time  `gorm:"column:created"`
	Expires   *time.Time `gorm:"column:expires"`
	Expired   bool       `gorm:"column:expired;not null;default:false"`
	Reason    string     `gorm:"column:reason;size:255"`
	RawReason string     `gorm:"column:raw_reason;type:text"`
	RawNote   string     `gorm:"column:raw_note;type:text"`

	// User is the owning profile. It is never loaded or saved through the ban;
	// the relation only declares the foreign key.
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName overrides the table name.
func (Ban) TableName() string {
	return "bans"
}

// ExportStatus is the lifecycle state of an ExportRecord.
type ExportStatus string

const (
	ExportPendingCreate ExportStatus = "PENDING_CREATE"
	ExportCreated       ExportStatus = "CREATED"
	ExportPendingDelete ExportStatus = "PENDING_DELETE"
)

// ExportRecord tracks one user published (or to be published) to an export list.
type ExportRecord struct {
	ID     uint         `gorm:"column:id;primaryKey;autoIncrement"`
	UserID string       `gorm:"column:user_id;size:32;index:idx_export_user_list"`
	ListID string       `gorm:"column:list_id;size:64;index:idx_export_user_list"`
	Status ExportStatus `gorm:"column:status;size:16;index"`
}

// TableName overrides the table name.
func (ExportRecord) TableName() string {
	return "export_records"
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &BanSourceList{}, &Ban{}, &ExportRecord{}}
}
