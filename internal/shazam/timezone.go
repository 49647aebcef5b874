package shazam

// europeanTimezones returns IANA zone names beginning with "Europe/". Go's
// standard library has no zone-name enumeration API, so the set is a fixed
// subset of the tzdata "Europe/" zones, not the complete list.
func europeanTimezones() []string {
	zones := []string{
		"Europe/Amsterdam", "Europe/Andorra", "Europe/Athens", "Europe/Belgrade",
		"Europe/Berlin", "Europe/Bratislava", "Europe/Brussels", "Europe/Bucharest",
		"Europe/Budapest", "Europe/Copenhagen", "Europe/Dublin", "Europe/Helsinki",
		"Europe/Lisbon", "Europe/Ljubljana", "Europe/London", "Europe/Luxembourg",
		"Europe/Madrid", "Europe/Malta", "Europe/Monaco", "Europe/Moscow",
		"Europe/Oslo", "Europe/Paris", "Europe/Prague", "Europe/Riga",
		"Europe/Rome", "Europe/Sofia", "Europe/Stockholm", "Europe/Tallinn",
		"Europe/Vienna", "Europe/Vilnius", "Europe/Warsaw", "Europe/Zagreb",
		"Europe/Zurich",
	}
	return zones
}
