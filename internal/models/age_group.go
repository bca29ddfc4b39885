package models

import (
	"fmt"
	"strings"
)

// AgeGroup возрастная группа читателя. Управляет объемом истории,
// лексикой и доступностью тем и персонажей.
type AgeGroup string

const (
	AgeGroup3To5  AgeGroup = "3-5"
	AgeGroup6To8  AgeGroup = "6-8"
	AgeGroup9To12 AgeGroup = "9-12"
)

// AllAgeGroups в порядке возрастания.
var AllAgeGroups = []AgeGroup{AgeGroup3To5, AgeGroup6To8, AgeGroup9To12}

// Valid сообщает, является ли значение одной из известных групп.
func (a AgeGroup) Valid() bool {
	switch a {
	case AgeGroup3To5, AgeGroup6To8, AgeGroup9To12:
		return true
	}
	return false
}

func (a AgeGroup) String() string { return string(a) }

// ParseAgeGroup разбирает строку из запроса.
func ParseAgeGroup(s string) (AgeGroup, error) {
	ag := AgeGroup(strings.TrimSpace(s))
	if !ag.Valid() {
		return "", fmt.Errorf("%w: неизвестная возрастная группа %q", ErrInvalidAgeGroup, s)
	}
	return ag, nil
}

// AgeGroupsAllow проверяет членство группы в списке допустимых.
// Пустой список означает "для всех возрастов".
func AgeGroupsAllow(allowed []AgeGroup, ag AgeGroup) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == ag {
			return true
		}
	}
	return false
}
