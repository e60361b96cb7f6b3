package model

// Package model defines the domain data structures shared across the
// server: the job record, its request parameters, status enums, and the
// wire snapshot. Structures are designed for single-writer mutation by
// the owning worker and explicit state transitions.
