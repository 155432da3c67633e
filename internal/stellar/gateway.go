// Package stellar implements the settlement gateway against a Horizon
// server. Sequence loading, fee discovery and signing live here; callers
// see only the domain.SettlementGateway interface.
package stellar

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

// Issuer addresses for the non-native testnet assets.
const (
	usdcIssuer = "GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5"
	eurcIssuer = "GB3Q6QDZYTHWT7E5PVS3W7FUT5GVAFC5KSZFFLPU25GO7VTC3NM2ZTVO"
)

// Submitted transactions carry a 30 second timebound, after which the
// network drops them instead of applying them late.
const transactionTimeout = 30

type Gateway struct {
	horizon           *horizonclient.Client
	networkPassphrase string
	source            *keypair.Full
	friendbotURL      string
	httpClient        *http.Client
	logger            *slog.Logger
}

type Options struct {
	HorizonURL        string
	NetworkPassphrase string
	SenderSecret      string
	FriendbotURL      string
	Timeout           time.Duration
}

func New(opts Options, logger *slog.Logger) (*Gateway, error) {
	source, err := keypair.ParseFull(opts.SenderSecret)
	if err != nil {
		return nil, fmt.Errorf("parse sender secret: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Gateway{
		horizon: &horizonclient.Client{
			HorizonURL: opts.HorizonURL,
			HTTP:       httpClient,
		},
		networkPassphrase: opts.NetworkPassphrase,
		source:            source,
		friendbotURL:      opts.FriendbotURL,
		httpClient:        httpClient,
		logger:            logger,
	}, nil
}

func (g *Gateway) SourceAddress() string {
	return g.source.Address()
}

// Settle builds, signs and submits one payment operation and returns the
// transaction hash. Timeouts are classified apart from rejections because
// the network may still have accepted the operation.
func (g *Gateway) Settle(ctx context.Context, source, destination string, currency domain.Currency, amount decimal.Decimal) (string, error) {
	asset, err := assetFor(currency)
	if err != nil {
		return "", err
	}

	sourceAccount, err := g.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: source})
	if err != nil {
		return "", g.classify("load source account", err)
	}

	baseFee, err := g.horizon.FetchBaseFee()
	if err != nil {
		return "", g.classify("fetch base fee", err)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		BaseFee:              baseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(transactionTimeout),
		},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: destination,
				Amount:      amount.StringFixed(7),
				Asset:       asset,
			},
		},
	})
	if err != nil {
		return "", errors.NewAppError(errors.SettlementFailed, "failed to build transaction").WithDetails(err.Error())
	}

	signed, err := tx.Sign(g.networkPassphrase, g.source)
	if err != nil {
		return "", errors.NewAppError(errors.SettlementFailed, "failed to sign transaction").WithDetails(err.Error())
	}

	resp, err := g.horizon.SubmitTransaction(signed)
	if err != nil {
		return "", g.classify("submit transaction", err)
	}

	g.logger.Info("Settlement submitted", "hash", resp.Hash, "destination", destination, "currency", currency, "amount", amount)
	return resp.Hash, nil
}

// NewIdentity generates a keypair for a new account. The seed is returned
// to the caller and not retained.
func (g *Gateway) NewIdentity() (string, string, error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", "", fmt.Errorf("generate keypair: %w", err)
	}
	return kp.Address(), kp.Seed(), nil
}

// FundAccount asks Friendbot to fund a testnet account.
func (g *Gateway) FundAccount(ctx context.Context, address string) error {
	reqURL := g.friendbotURL + "?addr=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build friendbot request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("friendbot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("friendbot returned status %d", resp.StatusCode)
	}

	g.logger.Info("Account funded", "public_key", address)
	return nil
}

func (g *Gateway) classify(op string, err error) error {
	if isTimeout(err) {
		return errors.NewAppError(errors.SettlementTimeout, op+" timed out").WithDetails(err.Error())
	}
	return errors.NewAppError(errors.SettlementFailed, op+" failed").WithDetails(err.Error())
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func assetFor(currency domain.Currency) (txnbuild.Asset, error) {
	switch currency {
	case domain.CurrencyXLM:
		return txnbuild.NativeAsset{}, nil
	case domain.CurrencyUSDC:
		return txnbuild.CreditAsset{Code: "USDC", Issuer: usdcIssuer}, nil
	case domain.CurrencyEURC:
		return txnbuild.CreditAsset{Code: "EURC", Issuer: eurcIssuer}, nil
	default:
		return nil, errors.NewAppError(errors.SettlementFailed, "unsupported currency: "+string(currency))
	}
}
