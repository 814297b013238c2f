// Copyright 2024 The go-manledger Authors
// This file is part of go-manledger.
//
// go-manledger is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-manledger is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-manledger. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/naoina/toml"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/cmd/utils"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/core/types"
	"github.com/MatrixAINetwork/go-manledger/device"
	"github.com/MatrixAINetwork/go-manledger/log"
)

// manDecimals is the number of decimals of one MAN.
const manDecimals = 18

var (
	errNoInput = errors.New("transaction argument missing")

	decodeCommand = &cli.Command{
		Action:    decodeTx,
		Name:      "decode",
		Usage:     "Show the review screens of an encoded transaction",
		ArgsUsage: "<hex | file | ->",
		Flags:     []cli.Flag{utils.TargetFlag, utils.UnitsFlag},
		Description: `
The decode command renders every review item of the transaction the way the
device pages it. Items that span several pages are printed once per page.`,
	}
	validateCommand = &cli.Command{
		Action:    validateTx,
		Name:      "validate",
		Usage:     "Check that a transaction can be reviewed on the device",
		ArgsUsage: "<hex | file | ->",
		Flags:     []cli.Flag{utils.TargetFlag},
	}
	encodeCommand = &cli.Command{
		Action:    encodeTx,
		Name:      "encode",
		Usage:     "Encode a TOML transaction description",
		ArgsUsage: "<tomlfile | ->",
		Flags:     []cli.Flag{utils.TargetFlag},
		Description: `
The encode command reads a transaction description such as

    nonce = 1
    gas_price = "18000000000"
    gas = 21000
    to = "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp"
    value = "1000000000000000000"
    chain_id = 1
    tx_type = 0

    [[recipients]]
    to = "MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk"
    amount = "500000000000000000"

and prints the RLP encoding of the unsigned transaction as hex.`,
	}
)

// readInput returns the first argument: stdin for "-", the argument itself
// if it is 0x-prefixed, the content of the named file otherwise.
func readInput(ctx *cli.Context) ([]byte, error) {
	if ctx.NArg() < 1 {
		return nil, errNoInput
	}
	arg := ctx.Args().First()
	switch {
	case arg == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X"):
		return []byte(arg), nil
	default:
		return os.ReadFile(arg)
	}
}

// readTx reads a hex encoded transaction from the first argument.
func readTx(ctx *cli.Context) ([]byte, error) {
	input, err := readInput(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := hexutil.DecodeLoose(strings.TrimSpace(string(input)))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %v", err)
	}
	return raw, nil
}

// reviewBuffers returns display buffers sized for the configured target.
func reviewBuffers(ctx *cli.Context) (key, val *textbuf.Buffer, err error) {
	cfg, err := config(ctx)
	if err != nil {
		return nil, nil, err
	}
	target, err := device.TargetByName(cfg.Device.Target)
	if err != nil {
		return nil, nil, err
	}
	return textbuf.New(target.KeyLen), textbuf.New(target.ValueLen), nil
}

// txError adds the device description to transaction errors.
func txError(err error) error {
	return fmt.Errorf("%s: %w", types.Describe(err), err)
}

func decodeTx(ctx *cli.Context) error {
	raw, err := readTx(ctx)
	if err != nil {
		return err
	}
	tx, err := types.Parse(raw)
	if err != nil {
		return txError(err)
	}
	key, val, err := reviewBuffers(ctx)
	if err != nil {
		return err
	}
	units := ctx.Bool(utils.UnitsFlag.Name)
	for i := 0; i < tx.NumItems(); i++ {
		for page := 0; ; page++ {
			pages, err := tx.GetItem(i, page, key, val)
			if err != nil {
				return txError(err)
			}
			value := val.String()
			if units && pages == 1 && isAmount(i) {
				value = toMAN(value)
			}
			label := key.String()
			if pages > 1 {
				label = fmt.Sprintf("%s [%d/%d]", label, page+1, pages)
			}
			fmt.Fprintln(ctx.App.Writer, strings.TrimRight(label+": "+value, " "))
			if page+1 >= pages {
				break
			}
		}
	}
	return nil
}

// isAmount reports whether review item idx is a token amount.
func isAmount(idx int) bool {
	const valueItem = 4
	if idx < types.DisplayCount {
		return idx == valueItem
	}
	return (idx-types.DisplayCount)%types.RecipientFieldCount == 1
}

// toMAN converts an amount in the smallest unit to MAN.
func toMAN(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return d.Shift(-manDecimals).String() + " MAN"
}

func validateTx(ctx *cli.Context) error {
	raw, err := readTx(ctx)
	if err != nil {
		return err
	}
	tx, err := types.Parse(raw)
	if err != nil {
		return txError(err)
	}
	key, val, err := reviewBuffers(ctx)
	if err != nil {
		return err
	}
	if err := tx.Validate(key, val); err != nil {
		return txError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "Valid %s transaction, %d recipients, %d review items\n", tx.TxType(), tx.RecipientCount(), tx.NumItems())
	fmt.Fprintf(ctx.App.Writer, "Signing hash: %s\n", types.SigHash(tx).Hex())
	return nil
}

func encodeTx(ctx *cli.Context) error {
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	var d types.TxData
	if err := toml.Unmarshal(input, &d); err != nil {
		return err
	}
	raw, err := d.Encode()
	if err != nil {
		return err
	}
	// Encoding does not check that the result can be signed.
	if tx, err := types.Parse(raw); err != nil {
		log.Warn("Encoded transaction cannot be signed", "err", types.Describe(err))
	} else if key, val, err := reviewBuffers(ctx); err != nil {
		return err
	} else if err := tx.Validate(key, val); err != nil {
		log.Warn("Encoded transaction cannot be reviewed", "err", types.Describe(err))
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(raw))
	return nil
}
