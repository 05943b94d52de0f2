package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Token models the transferable balance the ledger distributes: the
// balanceOf/transfer surface of an ERC20, with no allowances or events.
type Token struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int

	// forceTransferFailure makes every Transfer return false regardless of
	// balance, to exercise the ledger's transfer-failed path.
	forceTransferFailure bool
}

func NewToken() *Token {
	return &Token{
		balances: make(map[common.Address]*big.Int),
	}
}

// Mint credits an address with the given amount.
func (t *Token) Mint(addr common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[addr] = new(big.Int).Add(t.balanceOfLocked(addr), amount)
}

func (t *Token) BalanceOf(addr common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.balanceOfLocked(addr))
}

// Transfer moves amount from one address to another, returning false when
// the sender's balance is insufficient.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.forceTransferFailure {
		return false
	}
	fromBalance := t.balanceOfLocked(from)
	if fromBalance.Cmp(amount) < 0 {
		return false
	}
	t.balances[from] = new(big.Int).Sub(fromBalance, amount)
	t.balances[to] = new(big.Int).Add(t.balanceOfLocked(to), amount)
	return true
}

// ForceTransferFailure toggles unconditional transfer failure.
func (t *Token) ForceTransferFailure(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.forceTransferFailure = fail
}

func (t *Token) balanceOfLocked(addr common.Address) *big.Int {
	if b, ok := t.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}
