package dtos

// FlightPlanSubmission is the ICAO FPL form as submitted by the client. The
// validate tags are the field grammar enforced by internal/validation before
// any upstream work starts.
type FlightPlanSubmission struct {
	Mode                   string          `json:"mode" validate:"required,oneof=PVC PVS"`
	AircraftIdentification string          `json:"aircraftIdentification" validate:"required,min=2,max=7,alphanumupper"`
	CallsignFlag           *bool           `json:"callsignFlag,omitempty"`
	FlightRules            string          `json:"flightRules" validate:"required,oneof=I V Y Z"`
	FlightType             string          `json:"flightType" validate:"required,oneof=G S N M X"`
	AircraftCount          *int            `json:"aircraftCount,omitempty" validate:"omitempty,gte=1"`
	AircraftType           string          `json:"aircraftType" validate:"required,min=2,max=4,alphanumupper"`
	WakeTurbulenceCategory string          `json:"wakeTurbulenceCategory" validate:"required,oneof=L M H J"`
	EquipmentCapability    map[string]bool `json:"equipmentCapability" validate:"required,min=1,capability_codes"`
	SurveillanceEquipment  map[string]bool `json:"surveillanceEquipment" validate:"required,min=1,capability_codes"`

	Departure     DepartureInfo     `json:"departure"`
	Cruise        CruiseInfo        `json:"cruise"`
	Destination   DestinationInfo   `json:"destination"`
	Other         OtherInfo         `json:"other"`
	Supplementary SupplementaryInfo `json:"supplementary"`
}

type DepartureInfo struct {
	ICAO    string `json:"icao" validate:"required,icao"`
	TimeUTC string `json:"timeUTC" validate:"required,hhmm"`
}

type CruiseInfo struct {
	Speed string `json:"speed" validate:"required,cruise_speed"`
	Level string `json:"level" validate:"required,cruise_level"`
	Route string `json:"route" validate:"required,notblank"`
}

type DestinationInfo struct {
	ICAO       string `json:"icao" validate:"required,icao"`
	TotalEET   string `json:"totalEET" validate:"required,duration_hhmm"`
	Alternate1 string `json:"alternate1,omitempty" validate:"omitempty,icao"`
	Alternate2 string `json:"alternate2,omitempty" validate:"omitempty,icao"`
}

type OtherInfo struct {
	DateOfFlight string `json:"dof" validate:"required,dof"`
	Remarks      string `json:"remarks,omitempty" validate:"max=500"`
}

type SupplementaryInfo struct {
	Endurance             string            `json:"endurance" validate:"required,duration_hhmm"`
	PersonsOnBoard        *int              `json:"personsOnBoard" validate:"required,gte=0,lte=999"`
	EmergencyRadio        EmergencyRadio    `json:"emergencyRadio"`
	SurvivalEquipment     SurvivalEquipment `json:"survivalEquipment"`
	LifeJackets           LifeJackets       `json:"lifeJackets"`
	Dinghies              *Dinghies         `json:"dinghies,omitempty"`
	AircraftColorMarkings string            `json:"aircraftColorMarkings" validate:"required,notblank,max=100"`
	PilotInCommand        string            `json:"pilotInCommand" validate:"required,notblank,max=100"`
	License1              string            `json:"license1" validate:"required,license"`
	License2              string            `json:"license2,omitempty" validate:"omitempty,license"`
	Phone                 string            `json:"phone,omitempty" validate:"omitempty,phone"`
}

type EmergencyRadio struct {
	UHF bool `json:"uhf"`
	VHF bool `json:"vhf"`
	ELT bool `json:"elt"`
}

type SurvivalEquipment struct {
	Polar    bool `json:"polar"`
	Desert   bool `json:"desert"`
	Maritime bool `json:"maritime"`
	Jungle   bool `json:"jungle"`
}

type LifeJackets struct {
	Light       bool `json:"light"`
	Fluorescent bool `json:"fluorescent"`
	UHF         bool `json:"uhf"`
	VHF         bool `json:"vhf"`
}

type Dinghies struct {
	Number   int    `json:"number" validate:"gte=0,lte=99"`
	Capacity int    `json:"capacity" validate:"gte=0,lte=999"`
	Cover    bool   `json:"cover"`
	Color    string `json:"color,omitempty" validate:"max=50"`
}
