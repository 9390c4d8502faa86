package api

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/chainscope/redeemscan/pkg/app/errors"
	"github.com/chainscope/redeemscan/pkg/chains"
	"github.com/chainscope/redeemscan/pkg/locator"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// lookupRequest carries the source-transfer facts a caller submits to locate
// the matching redemption.
type lookupRequest struct {
	Network   string
	Chain     string `validate:"required"`
	Address   string `validate:"required"`
	Token     string `validate:"required"`
	Amount    string `validate:"required"`
	Timestamp int64  `validate:"required,gt=0"`
	TxHash    string `validate:"required"`
	Sequence  uint64
}

func parseLookupRequest(r *http.Request) (*lookupRequest, error) {
	q := r.URL.Query()
	req := &lookupRequest{
		Network: q.Get("network"),
		Chain:   q.Get("chain"),
		Address: q.Get("address"),
		Token:   q.Get("token"),
		Amount:  q.Get("amount"),
		TxHash:  q.Get("tx_hash"),
	}

	if raw := q.Get("timestamp"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "timestamp must be unix seconds")
		}
		req.Timestamp = ts
	}
	if raw := q.Get("sequence"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "sequence must be a non-negative integer")
		}
		req.Sequence = seq
	}

	if err := validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing or invalid query parameters")
	}

	return req, nil
}

// toQuery resolves the request against the chain registry and the configured
// default network.
func (req *lookupRequest) toQuery(defaultNetwork chains.Network) (locator.TransferQuery, error) {
	network := defaultNetwork
	if req.Network != "" {
		parsed, err := chains.ParseNetwork(req.Network)
		if err != nil {
			return locator.TransferQuery{}, apperrors.BadRequestError(err, "unknown network")
		}
		network = parsed
	}

	info, ok := chains.ByName(req.Chain)
	if !ok {
		return locator.TransferQuery{}, apperrors.BadRequestError(nil, "unknown source chain")
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return locator.TransferQuery{}, apperrors.BadRequestError(nil, "amount must be a positive base-10 integer")
	}

	return locator.TransferQuery{
		Network:   network,
		ChainID:   info.ID,
		Address:   req.Address,
		Token:     req.Token,
		Amount:    amount,
		Timestamp: time.Unix(req.Timestamp, 0).UTC(),
		TxHash:    req.TxHash,
		Sequence:  req.Sequence,
	}, nil
}
