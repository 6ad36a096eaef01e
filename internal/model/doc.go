package model

// Package model defines domain data structures shared across the app:
// download jobs, job status enums, and terminal outcomes.
