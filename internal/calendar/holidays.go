package calendar

// Holidays2025 is the static national holiday table shown in the calendar.
var Holidays2025 = map[string]string{
	"2025-01-01": "Tahun Baru Masehi",
	"2025-03-31": "Nyepi",
	"2025-04-18": "Wafat Isa Almasih",
	"2025-04-20": "Idul Fitri",
	"2025-04-21": "Cuti Bersama Idul Fitri",
	"2025-05-01": "Hari Buruh",
	"2025-05-29": "Kenaikan Isa Almasih",
	"2025-06-01": "Hari Lahir Pancasila",
	"2025-08-17": "Hari Kemerdekaan RI",
	"2025-11-01": "Libur Semester Ganjil",
	"2025-12-25": "Natal",
}
