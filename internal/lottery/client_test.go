package lottery

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// fakeBackend answers contract calls from a table and records sent
// transactions. Methods not overridden panic through the nil embedded
// interface.
type fakeBackend struct {
	bind.ContractBackend

	abi      *abi.ABI
	outputs  map[string][]interface{}
	callArgs map[string][]interface{}
	callErr  error
	sent     []*types.Transaction
	status   uint64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	parsed, err := LotteryMetaData.GetAbi()
	require.NoError(t, err)
	return &fakeBackend{
		abi:      parsed,
		outputs:  map[string][]interface{}{},
		callArgs: map[string][]interface{}{},
		status:   types.ReceiptStatusSuccessful,
	}
}

func (f *fakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	f.callArgs[method.Name] = args

	out, ok := f.outputs[method.Name]
	if !ok {
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}
	return method.Outputs.Pack(out...)
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: big.NewInt(params.GWei)}, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(2 * params.GWei), nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(params.GWei), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{
		Status:      f.status,
		TxHash:      txHash,
		BlockNumber: big.NewInt(101),
		GasUsed:     21_000,
	}, nil
}

func newTestClient(t *testing.T, backend *fakeBackend) *Client {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
	require.NoError(t, err)

	c, err := NewClient(testAddress, backend, auth, WithTxTimeout(time.Second))
	require.NoError(t, err)
	return c
}

func TestLotteryABI(t *testing.T) {
	parsed, err := LotteryMetaData.GetAbi()
	require.NoError(t, err)

	tests := []struct {
		method  string
		inputs  []string
		outputs []string
		payable bool
	}{
		{method: "inResolution", outputs: []string{"bool"}},
		{method: "lotteryId", outputs: []string{"uint32"}},
		{method: "startTimes", inputs: []string{"uint32"}, outputs: []string{"uint256"}},
		{method: "DURATION", outputs: []string{"uint256"}},
		{method: "COMMITTER_STAKE", outputs: []string{"uint256"}},
		{method: "commitValueAndStartResolution", inputs: []string{"uint256"}, payable: true},
		{method: "revealValueAndResolveLottery", inputs: []string{"uint256"}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m, ok := parsed.Methods[tt.method]
			require.True(t, ok, "method %s missing", tt.method)

			var in, out []string
			for _, arg := range m.Inputs {
				in = append(in, arg.Type.String())
			}
			for _, arg := range m.Outputs {
				out = append(out, arg.Type.String())
			}
			assert.Equal(t, tt.inputs, in)
			assert.Equal(t, tt.outputs, out)
			assert.Equal(t, tt.payable, m.IsPayable())
		})
	}
}

func TestNewClient_RequiresTransactor(t *testing.T) {
	_, err := NewClient(testAddress, newFakeBackend(t), nil)
	assert.ErrorIs(t, err, ErrNilTransactor)

	_, err = NewClient(testAddress, newFakeBackend(t), &bind.TransactOpts{})
	assert.ErrorIs(t, err, ErrNilTransactor)
}

func TestClient_Reads(t *testing.T) {
	backend := newFakeBackend(t)
	backend.outputs["inResolution"] = []interface{}{true}
	backend.outputs["lotteryId"] = []interface{}{uint32(7)}
	backend.outputs["startTimes"] = []interface{}{big.NewInt(1000)}
	backend.outputs["DURATION"] = []interface{}{big.NewInt(500)}
	backend.outputs["COMMITTER_STAKE"] = []interface{}{big.NewInt(params.Ether)}

	c := newTestClient(t, backend)
	ctx := context.Background()

	inResolution, err := c.InResolution(ctx)
	require.NoError(t, err)
	assert.True(t, inResolution)

	id, err := c.LotteryID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)

	start, err := c.StartTime(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), start.Int64())
	assert.Equal(t, []interface{}{uint32(7)}, backend.callArgs["startTimes"])

	duration, err := c.Duration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), duration.Int64())

	stake, err := c.CommitterStake(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(params.Ether), stake)
}

func TestClient_ReadError(t *testing.T) {
	backend := newFakeBackend(t)
	backend.callErr = errors.New("connection refused")
	c := newTestClient(t, backend)

	_, err := c.InResolution(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inResolution")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_Commit(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestClient(t, backend)

	hash := big.NewInt(0xdead)
	stake := big.NewInt(params.Ether)

	receipt, err := c.Commit(context.Background(), hash, stake)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), receipt.BlockNumber.Uint64())

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, testAddress, *tx.To())
	assert.Equal(t, stake, tx.Value())

	want, err := backend.abi.Pack("commitValueAndStartResolution", hash)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestClient_Reveal(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestClient(t, backend)

	preimage := big.NewInt(42)
	_, err := c.Reveal(context.Background(), preimage)
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, 0, tx.Value().Sign())

	want, err := backend.abi.Pack("revealValueAndResolveLottery", preimage)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestClient_Reverted(t *testing.T) {
	backend := newFakeBackend(t)
	backend.status = types.ReceiptStatusFailed
	c := newTestClient(t, backend)

	receipt, err := c.Reveal(context.Background(), big.NewInt(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTxReverted)
	require.NotNil(t, receipt)
}
