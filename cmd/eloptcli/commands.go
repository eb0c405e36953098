package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/elopt/config"
	"github.com/lightninglabs/elopt/contract"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/elementstx"
	"github.com/lightninglabs/elopt/txbuilder"
	"github.com/urfave/cli"
)

func loadConfig(ctx *cli.Context) *config.Config {
	path := ctx.GlobalString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func parseNetwork(ctx *cli.Context) covenant.Network {
	switch ctx.GlobalString("network") {
	case "liquid", "mainnet":
		return covenant.NetworkLiquid
	default:
		return covenant.NetworkRegtest
	}
}

// parseContractType maps the --type flag of addcontract/finalize to an
// Operation, mirroring the "type" string original_source/src/cmd/call.rs's
// exec_addcontract/exec_finalize switch on (exercise|expiry|cancel|claimbene).
func parseContractType(s string) txbuilder.Operation {
	switch s {
	case "exercise":
		return txbuilder.OpExercise
	case "cancel":
		return txbuilder.OpCancel
	case "expiry":
		return txbuilder.OpExpiry
	case "claimbene":
		return txbuilder.OpClaimBenefit
	default:
		fatal(fmt.Errorf("unknown --type %q, want exercise|cancel|expiry|claimbene", s))
		return 0
	}
}

// parseExpiry converts a YYYY-MM-DD date to its Unix-seconds UTC
// midnight value (spec.md §6).
func parseExpiry(s string) uint32 {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fatal(fmt.Errorf("invalid --expiry %q: %w", s, err))
	}
	return uint32(t.UTC().Unix())
}

// strikeToSatoshis converts a decimal BTC amount to satoshis via
// round(strike * 10^8) (spec.md §6).
func strikeToSatoshis(strike float64) uint64 {
	return uint64(math.Round(strike * 1e8))
}

func buildContract(ctx *cli.Context, cfg *config.Config) *contract.OptionContract {
	expiry := parseExpiry(ctx.String("expiry"))

	strike, err := strconv.ParseFloat(ctx.String("strike"), 64)
	if err != nil {
		fatal(fmt.Errorf("invalid --strike: %w", err))
	}

	locked, err := cfg.LockedParams()
	if err != nil {
		fatal(err)
	}
	claim, err := cfg.ClaimParams(strikeToSatoshis(strike))
	if err != nil {
		fatal(err)
	}

	priv, pub, err := cfg.ControlKeyPair()
	if err != nil {
		fatal(err)
	}
	return contract.New(expiry, locked, claim, pub.SerializeCompressed(), priv)
}

// contractFlags are the expiry/strike pair every call subcommand needs to
// rebuild the OptionContract, matching cmd_create/cmd_exercise/etc.'s
// shared --expiry/--strike options in original_source/src/cmd/call.rs.
var contractFlags = []cli.Flag{
	cli.StringFlag{Name: "expiry", Usage: "contract expiry, YYYY-MM-DD"},
	cli.StringFlag{Name: "strike", Usage: "strike amount in decimal BTC"},
}

var initConfigCommand = cli.Command{
	Name:  "initconfig",
	Usage: "write a configuration file populated with the well-known control keypair",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "out", Usage: "output path; defaults to the standard config location"},
	},
	Action: func(ctx *cli.Context) error {
		path := ctx.String("out")
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.Save(path, config.Default()); err != nil {
			fatal(err)
		}
		fmt.Println(path)
		return nil
	},
}

var createCommand = cli.Command{
	Name:  "create",
	Usage: "derive the deposit address for a new call option and print the amount to fund it with",
	Flags: contractFlags,
	Action: func(ctx *cli.Context) error {
		cfg := loadConfig(ctx)
		c := buildContract(ctx, cfg)
		addr, err := c.DepositAddress(parseNetwork(ctx))
		if err != nil {
			fatal(err)
		}
		fmt.Println(addr)
		fmt.Printf("Send exactly %d satoshi amount of coins to the above address\n", c.Locked.Value)
		return nil
	},
}

// buildSkeletonCommand returns the cli.Command for one of the four
// skeleton-only operations (exercise/cancel/expiry/claimbene), each a
// thin analogue of the matching exec_* function in
// original_source/src/cmd/call.rs: build the Phase A skeleton and print
// it as the raw tx the caller passes to the wallet's fundrawtransaction.
func buildSkeletonCommand(name string, op txbuilder.Operation) cli.Command {
	return cli.Command{
		Name:  name,
		Usage: fmt.Sprintf("build the unfunded %s transaction skeleton", name),
		Flags: contractFlags,
		Action: func(ctx *cli.Context) error {
			cfg := loadConfig(ctx)
			c := buildContract(ctx, cfg)

			tx, err := c.BuildSkeleton(op)
			if err != nil {
				fatal(err)
			}
			fmt.Println("Raw tx: pass this to fundrawtransaction, with a manually raised fee")
			printTxHex(tx)
			return nil
		},
	}
}

var exerciseCommand = buildSkeletonCommand("exercise", txbuilder.OpExercise)
var cancelCommand = buildSkeletonCommand("cancel", txbuilder.OpCancel)
var expiryCommand = buildSkeletonCommand("expiry", txbuilder.OpExpiry)
var claimBeneCommand = buildSkeletonCommand("claimbene", txbuilder.OpClaimBenefit)

// addContractCommand is the Phase B step: splice the covenant input and
// destination output into a wallet-funded transaction, and print the
// asset-commitment list the wallet's blindrawtransaction call needs — the
// Go analogue of exec_addcontract in original_source/src/cmd/call.rs.
var addContractCommand = cli.Command{
	Name:  "addcontract",
	Usage: "splice the covenant prevout and destination into a funded transaction",
	Flags: append(append([]cli.Flag{}, contractFlags...),
		cli.StringFlag{Name: "type", Usage: "exercise|cancel|expiry|claimbene"},
		cli.StringFlag{Name: "funded-tx", Usage: "hex-encoded, wallet-funded transaction"},
		cli.StringFlag{Name: "prev-txid", Usage: "covenant prevout txid"},
		cli.IntFlag{Name: "prev-vout", Usage: "covenant prevout index"},
		cli.StringFlag{Name: "dest-script", Usage: "hex-encoded destination scriptPubKey"},
		cli.StringFlag{Name: "dest-blinding-pubkey", Usage: "hex-encoded blinding pubkey, if the destination is confidential"},
	),
	Action: func(ctx *cli.Context) error {
		cfg := loadConfig(ctx)
		c := buildContract(ctx, cfg)
		op := parseContractType(ctx.String("type"))

		tx, err := elementstx.DeserializeTransaction(mustHex(ctx.String("funded-tx")))
		if err != nil {
			fatal(err)
		}

		txid, err := chainhash.NewHashFromStr(ctx.String("prev-txid"))
		if err != nil {
			fatal(fmt.Errorf("invalid --prev-txid: %w", err))
		}
		prevout := wire.OutPoint{Hash: *txid, Index: uint32(ctx.Int("prev-vout"))}

		dest := txbuilder.Destination{PkScript: mustHex(ctx.String("dest-script"))}
		if bp := ctx.String("dest-blinding-pubkey"); bp != "" {
			dest.BlindingPubKey = mustHex(bp)
		}

		if err := c.Splice(op, tx, prevout, dest); err != nil {
			fatal(err)
		}
		printTxHex(tx)

		// In claimbene the manually added input is of the claim asset,
		// while it is the locked asset in every other case, matching
		// exec_addcontract's aux_gen choice.
		generator := cfg.LockAsset
		if op == txbuilder.OpClaimBenefit {
			generator = cfg.ClaimAsset
		}
		list := contract.AssetCommitmentList(generator, len(tx.TxIn))
		b, err := json.Marshal(list)
		if err != nil {
			fatal(err)
		}
		fmt.Println("Asset commitment list: pass this as the third arg to blindrawtransaction")
		fmt.Println(string(b))
		return nil
	},
}

// finalizeCommand is the Phase C step: sign the covenant input and print
// the broadcastable transaction — the Go analogue of exec_finalize.
var finalizeCommand = cli.Command{
	Name:  "finalize",
	Usage: "sign the covenant input and extract the broadcastable transaction",
	Flags: append(append([]cli.Flag{}, contractFlags...),
		cli.StringFlag{Name: "type", Usage: "exercise|cancel|expiry|claimbene"},
		cli.StringFlag{Name: "signed-tx", Usage: "hex-encoded spliced, blinded, and wallet-signed transaction"},
	),
	Action: func(ctx *cli.Context) error {
		cfg := loadConfig(ctx)
		c := buildContract(ctx, cfg)
		op := parseContractType(ctx.String("type"))

		tx, err := elementstx.DeserializeTransaction(mustHex(ctx.String("signed-tx")))
		if err != nil {
			fatal(err)
		}

		final, err := c.Finalize(op, tx)
		if err != nil {
			fatal(err)
		}
		printTxHex(final)
		fmt.Println("elements-cli sendrawtransaction <hex>")
		return nil
	},
}

func printTxHex(tx *elementstx.Transaction) {
	b, err := tx.Serialize()
	if err != nil {
		fatal(err)
	}
	fmt.Println(hex.EncodeToString(b))
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		fatal(fmt.Errorf("invalid hex: %w", err))
	}
	return b
}
