package migration_20250301_0000

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"

	. "github.com/agrihub-io/agrihub/internal/database/migrations"
)

type Base struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	Base
	IdentityID       string `gorm:"uniqueIndex;size:64"`
	Name             string
	Email            string `gorm:"size:320"`
	LoginMethod      string `gorm:"size:64"`
	Role             string `gorm:"size:32;default:user"`
	Phone            string `gorm:"size:20"`
	Country          string `gorm:"size:100"`
	Region           string `gorm:"size:100"`
	Language         string `gorm:"size:10;default:ar"`
	SubscriptionTier string `gorm:"size:16;default:free"`
	LastSignedIn     time.Time
}

type Farm struct {
	Base
	OwnerID     uint `gorm:"index;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string
	TotalArea   int `gorm:"not null"`
	Location    string
	Address     string
	Country     string `gorm:"size:100"`
	Region      string `gorm:"size:100"`
	FarmType    string `gorm:"size:32;default:crop"`
	Status      string `gorm:"size:32;default:active"`
}

type Field struct {
	Base
	FarmID              uint   `gorm:"index;not null"`
	Name                string `gorm:"size:255;not null"`
	Area                int    `gorm:"not null"`
	Boundaries          string
	SoilType            string `gorm:"size:100"`
	CropType            string `gorm:"size:100"`
	PlantingDate        *time.Time
	ExpectedHarvestDate *time.Time
	IrrigationType      string `gorm:"size:32"`
	Status              string `gorm:"size:32;default:active"`
}

type Device struct {
	Base
	FarmID       *uint  `gorm:"index"`
	FieldID      *uint  `gorm:"index"`
	DeviceID     string `gorm:"uniqueIndex;size:100;not null"`
	DeviceType   string `gorm:"size:32;not null"`
	Manufacturer string `gorm:"size:100"`
	Model        string `gorm:"size:100"`
	Protocol     string `gorm:"size:50"`
	Location     string
	Status       string `gorm:"size:32;default:offline"`
	LastReading  *time.Time
	BatteryLevel *int
}

type SensorReading struct {
	Base
	DeviceID    uint  `gorm:"index;not null"`
	FieldID     *uint `gorm:"index"`
	ReadingType string `gorm:"size:100;not null"`
	Value       string `gorm:"not null"`
	Unit        string `gorm:"size:50"`
	Timestamp   time.Time `gorm:"index;not null"`
}

type IrrigationEvent struct {
	Base
	FieldID     uint      `gorm:"index;not null"`
	StartTime   time.Time `gorm:"index;not null"`
	EndTime     *time.Time
	WaterAmount *int
	Method      string `gorm:"size:32"`
	Automated   bool   `gorm:"default:false"`
	DeviceID    *uint
	Notes       string
}

type FertilizationEvent struct {
	Base
	FieldID        uint      `gorm:"index;not null"`
	Date           time.Time `gorm:"index;not null"`
	FertilizerType string    `gorm:"size:100"`
	Amount         *int
	Method         string `gorm:"size:32"`
	NpkRatio       string `gorm:"size:50"`
	Cost           *int
	Notes          string
}

type WeatherSample struct {
	Base
	FarmID        uint      `gorm:"index;not null"`
	Timestamp     time.Time `gorm:"index;not null"`
	Temperature   *int
	Humidity      *int
	Rainfall      *int
	WindSpeed     *int
	WindDirection *int
	Pressure      *int
	UvIndex       *int
	Source        string `gorm:"size:50"`
}

type Alert struct {
	Base
	UserID         uint `gorm:"index;not null"`
	FarmID         *uint
	FieldID        *uint
	AlertType      string `gorm:"size:32;not null"`
	Severity       string `gorm:"size:16;default:info"`
	Title          string `gorm:"size:255;not null"`
	Message        string `gorm:"not null"`
	IsRead         bool   `gorm:"default:false"`
	ActionRequired bool   `gorm:"default:false"`
	ExpiresAt      *time.Time
}

type Recommendation struct {
	Base
	UserID             uint `gorm:"index;not null"`
	FarmID             *uint
	FieldID            *uint
	RecommendationType string `gorm:"size:32;not null"`
	Title              string `gorm:"size:255;not null"`
	Description        string `gorm:"not null"`
	Priority           string `gorm:"size:16;default:medium"`
	Status             string `gorm:"size:16;default:pending"`
	Confidence         *int
	ValidUntil         *time.Time
	AppliedAt          *time.Time
}

type Crop struct {
	Base
	Name              string `gorm:"size:255;not null"`
	ScientificName    string `gorm:"size:255"`
	Category          string `gorm:"size:100"`
	GrowingSeasonDays *int
	WaterRequirement  string `gorm:"size:16"`
	TemperatureMin    *int
	TemperatureMax    *int
	SoilTypePreferred string `gorm:"size:100"`
	Description       string
}

type HarvestRecord struct {
	Base
	FieldID      uint      `gorm:"index;not null"`
	CropType     string    `gorm:"size:100"`
	HarvestDate  time.Time `gorm:"index;not null"`
	Quantity     *int
	Quality      string `gorm:"size:16"`
	MarketPrice  *int
	TotalRevenue *int
	Notes        string
}

type MarketPrice struct {
	Base
	CropType string `gorm:"index;size:100;not null"`
	Region   string `gorm:"size:100"`
	Price    int    `gorm:"not null"`
	Currency string `gorm:"size:10;default:USD"`
	Source   string `gorm:"size:100"`
	Date     time.Time `gorm:"index;not null"`
}

type Report struct {
	Base
	UserID     uint `gorm:"index;not null"`
	FarmID     *uint
	ReportType string `gorm:"size:32;not null"`
	Title      string `gorm:"size:255;not null"`
	Content    string
	FileUrl    string
	StartDate  *time.Time
	EndDate    *time.Time
}

func Migrate() *gormigrate.Migration {
	migrationId := "20250301-0000"
	return CreateMigrationFromActions(migrationId,
		CreateTableAction(&User{}),
		CreateTableAction(&Farm{}),
		CreateTableAction(&Field{}),
		CreateTableAction(&Device{}),
		CreateTableAction(&SensorReading{}),
		CreateTableAction(&IrrigationEvent{}),
		CreateTableAction(&FertilizationEvent{}),
		CreateTableAction(&WeatherSample{}),
		CreateTableAction(&Alert{}),
		CreateTableAction(&Recommendation{}),
		CreateTableAction(&Crop{}),
		CreateTableAction(&HarvestRecord{}),
		CreateTableAction(&MarketPrice{}),
		CreateTableAction(&Report{}),
	)
}
