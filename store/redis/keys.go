package redis

// Redis key naming conventions for lifecycle data.
// All keys are prefixed with "lifecycle:" to avoid collisions.

const keyPrefix = "lifecycle:"

// jobKey returns the key for a job entity: lifecycle:job:{id}
func jobKey(id string) string { return keyPrefix + "job:" + id }

// jobIDsKey is the Set tracking all job IDs for enumeration.
const jobIDsKey = keyPrefix + "job_ids"

// diagKey returns the List key holding a job's diagnostic trail,
// msgpack-encoded in append order: lifecycle:diag:{jobID}
func diagKey(jobID string) string { return keyPrefix + "diag:" + jobID }
