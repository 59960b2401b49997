/*
Package sigtrace provides the primitives of a deterministic signal trace
generator for serial protocols and data converters.

A trace is an ordered, immutable slice of frames. Each frame records the level
of every line of a bus for a given duration, expressed in abstract time units.
Protocol packages (uart, i2c, spi) build their traces on a Bus, which updates
all its lines in lock-step, and the convert package simulates DAC and ADC
conversions.

Generators are pure functions: calling one twice with the same arguments
yields identical traces, and no state is shared between calls. It is therefore
safe to call them concurrently from any number of goroutines.

*/
package sigtrace
