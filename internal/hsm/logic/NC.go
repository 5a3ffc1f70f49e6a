package logic

import (
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_tr31/internal/errorcodes"
	"github.com/andrei-cloud/go_tr31/pkg/cryptoutils"
)

const kcvHexLength = 6

// ExecuteNC returns "ND00" + 6 hex digit KBPK check value + firmware version.
func ExecuteNC(_ []byte, svc KeyBlockService) ([]byte, error) {
	log.Debug().Str("event", "nc_start").Msg("running diagnostics")

	kcv, err := svc.KBPKCheckValue()
	if err != nil {
		log.Error().Str("event", "nc_kcv_error").Err(err).Msg("failed to compute kbpk check value")

		return nil, errorcodes.Err41
	}

	firmware := svc.FirmwareVersion()
	resp := make([]byte, 0, 4+kcvHexLength+len(firmware))
	resp = append(resp, "ND00"...)
	resp = append(resp, cryptoutils.Raw2Str(kcv)[:kcvHexLength]...)
	resp = append(resp, firmware...)

	return resp, nil
}
