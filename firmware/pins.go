//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 5  // ADC read interval in milliseconds (same for both ADCs)
	NUM_SAMPLES        = 40 // Number of samples to average (5 frames per second)

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Indicator pins, driven together
	PIN_LED_STATUS = machine.D6
	PIN_LED_PIR    = machine.D3

	// Sensor pins
	PIN_PIR       = machine.D2
	PIN_TEMP_ADC  = machine.A0 // TMP36 output
	PIN_HUMID_ADC = machine.A1 // Ratiometric humidity sensor output

	// Serial configuration
	// Format "unix_micros,temp_adc,humid_adc,motion\n"
	// Example: "1234567890123456,4095,4095,1\n" = ~28 bytes max per line
	// 5 outputs/sec * 28 bytes/line = 140 bytes/sec, far below 115200 baud.
	// The host driver expects this rate.
	UART_BAUD_RATE = 115200
)
