package booking

// Service describes one bookable service's persisted layout: its booking,
// history and assignment tables, the human-readable id prefix, and the app
// route used for notification deep links. Portable-charger and pickup/drop-off
// bookings share one orchestration code path through this descriptor.
type Service struct {
	Key             string
	Label           string
	IDPrefix        string
	BookingTable    string
	HistoryTable    string
	AssignmentTable string
	DeepLinkPath    string
}

// PortableCharger is the portable-charger delivery service.
var PortableCharger = Service{
	Key:             "portable-charger",
	Label:           "Portable Charger",
	IDPrefix:        "PCB",
	BookingTable:    "portable_charger_bookings",
	HistoryTable:    "portable_charger_histories",
	AssignmentTable: "portable_charger_assignments",
	DeepLinkPath:    "/portable-charger/booking",
}

// PickupDrop is the vehicle pickup/drop-off service.
var PickupDrop = Service{
	Key:             "pickup-drop",
	Label:           "Pickup & Drop-off",
	IDPrefix:        "PDB",
	BookingTable:    "pickup_drop_bookings",
	HistoryTable:    "pickup_drop_histories",
	AssignmentTable: "pickup_drop_assignments",
	DeepLinkPath:    "/pickup-drop/booking",
}

// Services lists every registered service, keyed by route segment.
var Services = map[string]Service{
	PortableCharger.Key: PortableCharger,
	PickupDrop.Key:      PickupDrop,
}

// ServiceByKey resolves a route segment to its service descriptor.
func ServiceByKey(key string) (Service, bool) {
	svc, ok := Services[key]
	return svc, ok
}
