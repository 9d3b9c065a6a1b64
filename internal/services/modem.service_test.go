package services

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModemSerial(t *testing.T) {
	modems := []ofonoModem{
		{
			Path: "/ril_0",
			Properties: map[string]dbus.Variant{
				"Serial":       dbus.MakeVariant("356938035643809"),
				"Manufacturer": dbus.MakeVariant("Example"),
			},
		},
		{
			Path:       "/ril_1",
			Properties: map[string]dbus.Variant{"Serial": dbus.MakeVariant("490154203237518")},
		},
	}

	imei, err := modemSerial(modems, 0)
	require.NoError(t, err)
	assert.Equal(t, "356938035643809", imei)

	imei, err = modemSerial(modems, 1)
	require.NoError(t, err)
	assert.Equal(t, "490154203237518", imei)
}

func TestModemSerialNoModem(t *testing.T) {
	_, err := modemSerial(nil, 0)
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestModemSerialMissingProperty(t *testing.T) {
	modems := []ofonoModem{{Path: "/ril_0", Properties: map[string]dbus.Variant{}}}

	_, err := modemSerial(modems, 0)
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestModemSerialWrongType(t *testing.T) {
	modems := []ofonoModem{{Path: "/ril_0", Properties: map[string]dbus.Variant{"Serial": dbus.MakeVariant(uint32(7))}}}

	_, err := modemSerial(modems, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDevice)
}
