package process

// InvalidPID is returned when no process was created or its identifier is
// unknown.
const InvalidPID int64 = -1
