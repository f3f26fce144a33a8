package model

import "time"

var berlin = mustLoadBerlin()

func mustLoadBerlin() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		// Sem tzdata no container: opera em UTC
		return time.UTC
	}
	return loc
}

// NowBerlin retorna o horário atual no fuso do hotel (Europe/Berlin)
func NowBerlin() time.Time {
	return time.Now().In(berlin)
}
