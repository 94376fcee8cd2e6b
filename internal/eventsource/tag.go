package eventsource

// SelfTag is the stable value stamped into every synthetic event flowmod
// posts. The interceptor checks this field first on every tap callback and
// passes such events through unmodified — it is the only mechanism
// preventing infinite re-entry (the tap sees its own synthetic output).
//
// Chosen as a fixed, arbitrary 64-bit constant rather than anything
// derived from the process (pid, start time): it must be identical across
// every event flowmod posts for the lifetime of the process, and it must
// never collide with kCGEventSourceUserData values a real HID driver or
// another well-behaved accessibility tool would plausibly write.
const SelfTag int64 = 0x666C6F776D6F6431 // "flowmod1" in ASCII hex
