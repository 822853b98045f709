package domain

import "time"

// ResolveStageKey maps a lead's driving fields to its pipeline stage key.
// The priority order is fixed: conversion wins over a pending follow-up,
// which wins over any call status. The result is total — every input
// combination maps to exactly one of the six system keys, with
// not_answered as the default (covering both an explicit not_answered
// status and no recorded status at all).
func ResolveStageKey(isConverted bool, followUpDate *time.Time, callStatus *CallStatus, now time.Time) StageKey {
	if isConverted {
		return StageConverted
	}
	if followUpDate != nil && followUpDate.After(now) {
		return StageFollowUp
	}
	if callStatus != nil {
		switch *callStatus {
		case CallStatusAnswered:
			return StageAnswered
		case CallStatusClientAnswered:
			return StageClientAnswered
		case CallStatusClientNotAnswered:
			return StageClientNotAnswered
		}
	}
	return StageNotAnswered
}

// ResolveLeadStageKey resolves the stage key for a lead at the given time.
func ResolveLeadStageKey(lead *Lead, now time.Time) StageKey {
	return ResolveStageKey(lead.IsConverted, lead.FollowUpDate, lead.CallStatus, now)
}

// SystemStageSeed describes one of the six built-in stages created at startup.
type SystemStageSeed struct {
	Key         StageKey
	Name        string
	Color       string
	Description string
	SortOrder   int
}

// SystemStageSeeds returns the built-in stage catalog in display order.
func SystemStageSeeds() []SystemStageSeed {
	return []SystemStageSeed{
		{Key: StageAnswered, Name: "JAVOB BERILDI", Color: "#55db34", Description: "Mijozni qo'ngirog'iga javob berilgan", SortOrder: 1},
		{Key: StageNotAnswered, Name: "JAVOB BERILMADI", Color: "#f39c12", Description: "Mijozni qo'ngirog'iga javob berilmadi", SortOrder: 2},
		{Key: StageClientAnswered, Name: "MIJOZ JAVOB BERDI", Color: "#3c8ce7", Description: "Mijozga qayta qo'ng'iroq qilindi", SortOrder: 3},
		{Key: StageClientNotAnswered, Name: "MIJOZ JAVOB BERMADI", Color: "#e74c3c", Description: "Mijozga qayta qo'ng'iroq qilindi, lekin mijoz javob bermadi", SortOrder: 4},
		{Key: StageFollowUp, Name: "KEYINGI ALOQA", Color: "#9b59b6", Description: "Yaqinda aloqa o'rnatish rejalashtirilgan", SortOrder: 5},
		{Key: StageConverted, Name: "MIJOZGA AYLANGAN", Color: "#27ae60", Description: "Muvaffaqiyatli mijozga aylantirilgan", SortOrder: 6},
	}
}
