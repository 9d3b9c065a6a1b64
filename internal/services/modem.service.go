package services

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	ofonoService        = "org.ofono"
	ofonoManagerPath    = dbus.ObjectPath("/")
	ofonoGetModems      = "org.ofono.Manager.GetModems"
	ofonoSerialProperty = "Serial"
)

// ModemInfo looks up modem identity by modem index
type ModemInfo interface {
	IMEI(ctx context.Context, index int) (string, error)
}

// ofonoModem mirrors one (oa{sv}) element of GetModems
type ofonoModem struct {
	Path       dbus.ObjectPath
	Properties map[string]dbus.Variant
}

// OfonoModems reads the IMEI from the oFono telephony daemon over the
// system bus. A connection is opened per call and closed afterwards.
type OfonoModems struct {
	Connect func() (*dbus.Conn, error)
}

// NewOfonoModems creates a modem source on the system bus
func NewOfonoModems() *OfonoModems {
	return &OfonoModems{
		Connect: func() (*dbus.Conn, error) {
			return dbus.ConnectSystemBus()
		},
	}
}

// IMEI returns the Serial property of the index-th modem
func (o *OfonoModems) IMEI(ctx context.Context, index int) (string, error) {
	conn, err := o.Connect()
	if err != nil {
		return "", fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	var modems []ofonoModem
	call := conn.Object(ofonoService, ofonoManagerPath).CallWithContext(ctx, ofonoGetModems, 0)
	if err := call.Store(&modems); err != nil {
		return "", fmt.Errorf("failed to list ofono modems: %w", err)
	}

	return modemSerial(modems, index)
}

// modemSerial extracts the IMEI of the index-th modem
func modemSerial(modems []ofonoModem, index int) (string, error) {
	if index < 0 || index >= len(modems) {
		return "", fmt.Errorf("modem index %d: %w", index, ErrNoDevice)
	}

	variant, ok := modems[index].Properties[ofonoSerialProperty]
	if !ok {
		return "", fmt.Errorf("modem %s has no %s: %w", modems[index].Path, ofonoSerialProperty, ErrNoDevice)
	}

	serial, ok := variant.Value().(string)
	if !ok {
		return "", fmt.Errorf("modem %s: unexpected %s type %s", modems[index].Path, ofonoSerialProperty, variant.Signature())
	}
	return serial, nil
}
