package email

// PreviewData contains sample template data for local preview/testing.
//
// It maps templateName -> (templateVariableName -> exampleValue). The
// render test executes every template against this map, so adding a
// template without preview data fails the suite.
var PreviewData = map[string]map[string]string{
	"welcome": {
		"Name": "Maria",
	},
	"booking_confirmed": {
		"Name":      "Maria",
		"Reference": "8GK2XDQ",
		"RoomName":  "Sala Aurora",
		"StartsAt":  "15/03/2025 14:00",
		"Hours":     "2",
		"Amount":    "R$ 150,00",
	},
	"booking_cancelled": {
		"Name":            "Maria",
		"Reference":       "8GK2XDQ",
		"RoomName":        "Sala Aurora",
		"StartsAt":        "15/03/2025 14:00",
		"CreditsRestored": "2",
	},
	"booking_reminder": {
		"Name":      "Maria",
		"Reference": "8GK2XDQ",
		"RoomName":  "Sala Aurora",
		"StartsAt":  "15/03/2025 14:00",
		"Hours":     "2",
	},
	"payment_approved": {
		"Name":        "Maria",
		"Description": "Pacote 10 horas",
		"Total":       "R$ 450,00",
		"Method":      "PIX",
	},
	"credits_purchased": {
		"Name":        "Maria",
		"Hours":       "10",
		"ProductName": "Pacote 10 horas",
		"Total":       "R$ 450,00",
	},
}
