package job

// Package job implements the download lifecycle core: the registry that
// owns all job records, the per-job worker state machine, the staging
// reconciler that preserves completed artifacts on any exit path, and
// the change feed handlers stream from.
