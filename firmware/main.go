//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcTemp  machine.ADC
	adcHumid machine.ADC
	uart     = machine.UART0

	// ADC averaging - running sums and counts
	tempSum     uint32
	humidSum    uint32
	sampleCount int
	motionSeen  bool // PIR went high at any point during the averaging window

	// Timing
	lastADCRead time.Time
)

func main() {
	PIN_LED_STATUS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LED_PIR.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_PIR.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	PIN_TEMP_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HUMID_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}
	adcHumid = machine.ADC{Pin: PIN_HUMID_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcTemp.Configure(adcConfig)
	adcHumid.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	setIndicator(false)
	println("sensor board ready")

	lastADCRead = time.Now()

	for {
		now := time.Now()

		processSerial()

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readSensors()
			lastADCRead = now
		}

		if sampleCount >= NUM_SAMPLES {
			outputFrame()
			tempSum = 0
			humidSum = 0
			sampleCount = 0
			motionSeen = false
		}

		time.Sleep(100 * time.Microsecond)
	}
}

func readSensors() {
	tempSum += uint32(adcTemp.Get())
	humidSum += uint32(adcHumid.Get())
	if PIN_PIR.Get() {
		motionSeen = true
	}
	sampleCount++
}

func outputFrame() {
	n := sampleCount
	if n == 0 {
		n = 1 // Avoid division by zero
	}
	tempAvg := uint16(tempSum / uint32(n))
	humidAvg := uint16(humidSum / uint32(n))

	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,temp_adc,humid_adc,motion\n"
	// Example: "1234567890123,931,1985,1\n"
	print(timestampMicros)
	print(",")
	print(tempAvg)
	print(",")
	print(humidAvg)
	if motionSeen {
		print(",1\n")
	} else {
		print(",0\n")
	}
}

// processSerial handles indicator commands: a line holding "1" or "0".
func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		switch data {
		case '1':
			setIndicator(true)
		case '0':
			setIndicator(false)
		}
	}
}

func setIndicator(on bool) {
	PIN_LED_STATUS.Set(on)
	PIN_LED_PIR.Set(on)
}
