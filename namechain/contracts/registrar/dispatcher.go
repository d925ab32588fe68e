package registrar

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-namechain/inter"
)

var (
	// ErrUnknownMethod is returned for calldata whose selector matches no
	// controller method.
	ErrUnknownMethod = errors.New("unknown method selector")

	// ErrMalformedInput is returned for calldata too short to carry a
	// selector or whose arguments fail to decode.
	ErrMalformedInput = errors.New("malformed call input")
)

// ContractAddress is the controller's well-known account on the ledger.
var ContractAddress = common.HexToAddress("0x4e43000000000000000000000000000000000000")

// ContractABI describes the controller methods callable through the
// chain's native call mechanism:
//   - available(string name): availability check, premium-blind
//   - registerPrice(string name, uint256 duration): full quote in wei
//   - rentPrice(string name, uint256 duration): renewal quote in wei
//   - renew(string name, uint256 duration): extend a registration
//   - withdrawETH(): sweep captured payments to the payment receiver
const ContractABI = "[{\"constant\":true,\"inputs\":[{\"internalType\":\"string\",\"name\":\"name\",\"type\":\"string\"}],\"name\":\"available\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"payable\":false,\"stateMutability\":\"view\",\"type\":\"function\"},{\"constant\":true,\"inputs\":[{\"internalType\":\"string\",\"name\":\"name\",\"type\":\"string\"},{\"internalType\":\"uint256\",\"name\":\"duration\",\"type\":\"uint256\"}],\"name\":\"registerPrice\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"payable\":false,\"stateMutability\":\"view\",\"type\":\"function\"},{\"constant\":true,\"inputs\":[{\"internalType\":\"string\",\"name\":\"name\",\"type\":\"string\"},{\"internalType\":\"uint256\",\"name\":\"duration\",\"type\":\"uint256\"}],\"name\":\"rentPrice\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"payable\":false,\"stateMutability\":\"view\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"string\",\"name\":\"name\",\"type\":\"string\"},{\"internalType\":\"uint256\",\"name\":\"duration\",\"type\":\"uint256\"}],\"name\":\"renew\",\"outputs\":[],\"payable\":true,\"stateMutability\":\"payable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[],\"name\":\"withdrawETH\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"}]"

var (
	contractABI abi.ABI

	availableMethodID     []byte // available(string)
	registerPriceMethodID []byte // registerPrice(string,uint256)
	rentPriceMethodID     []byte // rentPrice(string,uint256)
	renewMethodID         []byte // renew(string,uint256)
	withdrawETHMethodID   []byte // withdrawETH()
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		panic(err)
	}
	contractABI = parsed

	for name, constID := range map[string]*[]byte{
		"available":     &availableMethodID,
		"registerPrice": &registerPriceMethodID,
		"rentPrice":     &rentPriceMethodID,
		"renew":         &renewMethodID,
		"withdrawETH":   &withdrawETHMethodID,
	} {
		method, exist := contractABI.Methods[name]
		if !exist {
			panic("unknown controller method")
		}
		*constID = make([]byte, len(method.ID))
		copy(*constID, method.ID)
	}
}

// Dispatcher exposes the controller through method-ID dispatch over
// ABI-encoded calldata, the shape of a native contract call.
type Dispatcher struct {
	controller *Controller
}

// NewDispatcher wraps the controller.
func NewDispatcher(c *Controller) *Dispatcher {
	return &Dispatcher{controller: c}
}

// Run decodes and executes one call. caller and value carry the transaction
// context, now is the ledger time. Unknown selectors and short input fail
// with ErrUnknownMethod / ErrMalformedInput.
func (d *Dispatcher) Run(caller common.Address, value *big.Int, now inter.Timestamp, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, ErrMalformedInput
	}
	selector, args := input[:4], input[4:]

	switch {
	case bytes.Equal(selector, availableMethodID):
		name, _, err := d.unpackNameDuration("available", args)
		if err != nil {
			return nil, err
		}
		available, err := d.controller.Available(name, now)
		if err != nil {
			return nil, err
		}
		return contractABI.Methods["available"].Outputs.Pack(available)

	case bytes.Equal(selector, registerPriceMethodID):
		name, duration, err := d.unpackNameDuration("registerPrice", args)
		if err != nil {
			return nil, err
		}
		price, err := d.controller.RegisterPrice(name, duration, now)
		if err != nil {
			return nil, err
		}
		return contractABI.Methods["registerPrice"].Outputs.Pack(price.Total())

	case bytes.Equal(selector, rentPriceMethodID):
		name, duration, err := d.unpackNameDuration("rentPrice", args)
		if err != nil {
			return nil, err
		}
		price, err := d.controller.RentPrice(name, duration)
		if err != nil {
			return nil, err
		}
		return contractABI.Methods["rentPrice"].Outputs.Pack(price.Total())

	case bytes.Equal(selector, renewMethodID):
		name, duration, err := d.unpackNameDuration("renew", args)
		if err != nil {
			return nil, err
		}
		return nil, d.controller.Renew(Call{Caller: caller, Value: value, Time: now}, name, duration)

	case bytes.Equal(selector, withdrawETHMethodID):
		if len(args) != 0 {
			return nil, ErrMalformedInput
		}
		return nil, d.controller.WithdrawFunds(Call{Caller: caller, Value: value, Time: now})

	default:
		return nil, ErrUnknownMethod
	}
}

// unpackNameDuration decodes (string name) or (string name, uint256
// duration) arguments of the named method. The duration argument is in
// seconds, matching the on-chain convention.
func (d *Dispatcher) unpackNameDuration(method string, args []byte) (string, time.Duration, error) {
	values, err := contractABI.Methods[method].Inputs.Unpack(args)
	if err != nil {
		return "", 0, ErrMalformedInput
	}
	name, ok := values[0].(string)
	if !ok {
		return "", 0, ErrMalformedInput
	}
	if len(values) == 1 {
		return name, 0, nil
	}
	seconds, ok := values[1].(*big.Int)
	if !ok || !seconds.IsInt64() {
		return "", 0, ErrMalformedInput
	}
	return name, time.Duration(seconds.Int64()) * time.Second, nil
}
