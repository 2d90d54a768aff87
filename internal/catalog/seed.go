package catalog

import "github.com/mmeshcher/evolve-charging/internal/model"

// SeedStations возвращает демонстрационный набор станций Бангалора.
func SeedStations() []model.Station {
	return []model.Station{
		{
			ID:                "1",
			Name:              "Green Energy Hub - Koramangala",
			Lat:               12.9352,
			Lon:               77.6245,
			Kind:              model.StationKindFast,
			SlotsTotal:        8,
			SlotsAvailable:    3,
			PricePerKwh:       12,
			Rating:            4.8,
			HostID:            "2",
			HostName:          "Green Energy Co.",
			Status:            model.StationStatusOnline,
			Address:           "123 Main Road, Koramangala, Bangalore - 560034",
			Amenities:         []string{"WiFi", "Cafe", "Restroom", "Waiting Area"},
			Images:            []string{},
			PredictedWaitTime: 12,
		},
		{
			ID:                "2",
			Name:              "EV Point - Indiranagar",
			Lat:               12.9716,
			Lon:               77.6412,
			Kind:              model.StationKindFast,
			SlotsTotal:        6,
			SlotsAvailable:    2,
			PricePerKwh:       15,
			Rating:            4.5,
			HostID:            "2",
			HostName:          "Private Host",
			Status:            model.StationStatusOnline,
			Address:           "45 Park Street, Indiranagar, Bangalore - 560038",
			Amenities:         []string{"WiFi", "Parking"},
			Images:            []string{},
			PredictedWaitTime: 18,
		},
		{
			ID:                "3",
			Name:              "Battery Swap Station - HSR Layout",
			Lat:               12.9116,
			Lon:               77.6382,
			Kind:              model.StationKindSwap,
			SlotsTotal:        4,
			SlotsAvailable:    4,
			PricePerKwh:       0,
			Rating:            4.9,
			HostID:            "2",
			HostName:          "SwapTech Solutions",
			Status:            model.StationStatusOnline,
			Address:           "78 Sector 2, HSR Layout, Bangalore - 560102",
			Amenities:         []string{"Quick Service", "Batteries Available", "Restroom"},
			Images:            []string{},
			PredictedWaitTime: 5,
		},
		{
			ID:                "4",
			Name:              "PowerCharge - MG Road",
			Lat:               12.9756,
			Lon:               77.6069,
			Kind:              model.StationKindFast,
			SlotsTotal:        10,
			SlotsAvailable:    6,
			PricePerKwh:       18,
			Rating:            4.6,
			HostID:            "2",
			HostName:          "PowerCharge Network",
			Status:            model.StationStatusOnline,
			Address:           "MG Road Metro Station, Bangalore - 560001",
			Amenities:         []string{"WiFi", "Cafe", "Shopping", "Restroom"},
			Images:            []string{},
			PredictedWaitTime: 8,
		},
		{
			ID:                "5",
			Name:              "Home Charger - Whitefield",
			Lat:               12.9698,
			Lon:               77.7500,
			Kind:              model.StationKindSlow,
			SlotsTotal:        2,
			SlotsAvailable:    1,
			PricePerKwh:       8,
			Rating:            4.3,
			HostID:            "2",
			HostName:          "Ramesh Kumar",
			Status:            model.StationStatusOnline,
			Address:           "Villa 23, Green Gardens, Whitefield, Bangalore - 560066",
			Amenities:         []string{"Parking", "Home Environment"},
			Images:            []string{},
			PredictedWaitTime: 25,
		},
		{
			ID:                "6",
			Name:              "EcoCharge Hub - Electronic City",
			Lat:               12.8456,
			Lon:               77.6603,
			Kind:              model.StationKindFast,
			SlotsTotal:        12,
			SlotsAvailable:    8,
			PricePerKwh:       14,
			Rating:            4.7,
			HostID:            "2",
			HostName:          "EcoCharge Ltd",
			Status:            model.StationStatusOnline,
			Address:           "Phase 1, Electronic City, Bangalore - 560100",
			Amenities:         []string{"WiFi", "Food Court", "Restroom", "Lounge"},
			Images:            []string{},
			PredictedWaitTime: 10,
		},
	}
}
