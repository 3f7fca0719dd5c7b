package ledger

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
)

// Store gives typed access to the persisted ledger state. Every record
// lives in its own prefix table; structured values are RLP-encoded.
// A Store carries no cache, so it can view either the committed database
// or an in-flight write overlay.
type Store struct {
	table struct {
		Positions    escrowdb.Store // id -> LockedBalance
		Owners       escrowdb.Store // id -> address
		Approvals    escrowdb.Store // id -> approved address
		Operators    escrowdb.Store // owner|operator -> flag
		UserEpochs   escrowdb.Store // id -> latest user epoch
		UserPoints   escrowdb.Store // id|epoch -> UserPoint
		GlobalPoints escrowdb.Store // epoch -> GlobalPoint
		SlopeChanges escrowdb.Store // week timestamp -> SignedBig
		SplitAllowed escrowdb.Store // owner -> flag
		Meta         escrowdb.Store // named singletons
	}
}

// Meta keys.
var (
	mkGlobalEpoch = []byte("epoch")
	mkNextLockID  = []byte("nextid")
	mkBlock       = []byte("block")
	mkTotalLocked = []byte("locked")
	mkPermanent   = []byte("permanent")
	mkPenalties   = []byte("penalties")
	mkGovernor    = []byte("governor")
	mkRules       = []byte("rules")
	mkGenesisHash = []byte("genesis")
	mkGenesisTime = []byte("time0")
)

func newStore(db escrowdb.Store) *Store {
	s := &Store{}
	s.table.Positions = escrowdb.NewTable(db, []byte("p"))
	s.table.Owners = escrowdb.NewTable(db, []byte("o"))
	s.table.Approvals = escrowdb.NewTable(db, []byte("a"))
	s.table.Operators = escrowdb.NewTable(db, []byte("A"))
	s.table.UserEpochs = escrowdb.NewTable(db, []byte("U"))
	s.table.UserPoints = escrowdb.NewTable(db, []byte("u"))
	s.table.GlobalPoints = escrowdb.NewTable(db, []byte("g"))
	s.table.SlopeChanges = escrowdb.NewTable(db, []byte("s"))
	s.table.SplitAllowed = escrowdb.NewTable(db, []byte("S"))
	s.table.Meta = escrowdb.NewTable(db, []byte("M"))
	return s
}

func lockKey(id inter.LockID) []byte {
	return bigendian.Uint64ToBytes(uint64(id))
}

func epochKey(epoch idx.Epoch) []byte {
	return bigendian.Uint32ToBytes(uint32(epoch))
}

func timeKey(t inter.Timestamp) []byte {
	return bigendian.Uint64ToBytes(uint64(t))
}

func userPointKey(id inter.LockID, epoch idx.Epoch) []byte {
	return append(lockKey(id), epochKey(epoch)...)
}

// uint64 meta counter, zero when unset

func (s *Store) metaUint64(key []byte) (uint64, error) {
	b, err := s.table.Meta.Get(key)
	if err != nil {
		return 0, fmt.Errorf("load meta %q: %w", key, err)
	}
	if b == nil {
		return 0, nil
	}
	return bigendian.BytesToUint64(b), nil
}

func (s *Store) setMetaUint64(key []byte, v uint64) error {
	if err := s.table.Meta.Put(key, bigendian.Uint64ToBytes(v)); err != nil {
		return fmt.Errorf("store meta %q: %w", key, err)
	}
	return nil
}

// non-negative big.Int meta counter, zero when unset

func (s *Store) metaBig(key []byte) (*big.Int, error) {
	b, err := s.table.Meta.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load meta %q: %w", key, err)
	}
	return new(big.Int).SetBytes(b), nil
}

func (s *Store) setMetaBig(key []byte, v *big.Int) error {
	if v.Sign() < 0 {
		return fmt.Errorf("store meta %q: negative value %s", key, v)
	}
	if err := s.table.Meta.Put(key, v.Bytes()); err != nil {
		return fmt.Errorf("store meta %q: %w", key, err)
	}
	return nil
}

func (s *Store) GlobalEpoch() (idx.Epoch, error) {
	v, err := s.metaUint64(mkGlobalEpoch)
	return idx.Epoch(v), err
}

func (s *Store) SetGlobalEpoch(epoch idx.Epoch) error {
	return s.setMetaUint64(mkGlobalEpoch, uint64(epoch))
}

// AllocLockID hands out the next position id, starting from 1.
func (s *Store) AllocLockID() (inter.LockID, error) {
	next, err := s.metaUint64(mkNextLockID)
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, escrow.ErrNotInitialized
	}
	if err := s.setMetaUint64(mkNextLockID, next+1); err != nil {
		return 0, err
	}
	return inter.LockID(next), nil
}

func (s *Store) SetNextLockID(next inter.LockID) error {
	return s.setMetaUint64(mkNextLockID, uint64(next))
}

func (s *Store) LastLockID() (inter.LockID, error) {
	next, err := s.metaUint64(mkNextLockID)
	if err != nil || next == 0 {
		return 0, err
	}
	return inter.LockID(next - 1), nil
}

// NextBlock advances the operation sequence number checkpoints are stamped
// with.
func (s *Store) NextBlock() (idx.Block, error) {
	last, err := s.metaUint64(mkBlock)
	if err != nil {
		return 0, err
	}
	if err := s.setMetaUint64(mkBlock, last+1); err != nil {
		return 0, err
	}
	return idx.Block(last + 1), nil
}

func (s *Store) TotalLocked() (*big.Int, error) {
	return s.metaBig(mkTotalLocked)
}

func (s *Store) SetTotalLocked(v *big.Int) error {
	return s.setMetaBig(mkTotalLocked, v)
}

func (s *Store) PermanentTotal() (*big.Int, error) {
	return s.metaBig(mkPermanent)
}

func (s *Store) SetPermanentTotal(v *big.Int) error {
	return s.setMetaBig(mkPermanent, v)
}

func (s *Store) PenaltiesAccrued() (*big.Int, error) {
	return s.metaBig(mkPenalties)
}

func (s *Store) SetPenaltiesAccrued(v *big.Int) error {
	return s.setMetaBig(mkPenalties, v)
}

func (s *Store) Governor() (common.Address, error) {
	b, err := s.table.Meta.Get(mkGovernor)
	if err != nil {
		return common.Address{}, fmt.Errorf("load governor: %w", err)
	}
	return common.BytesToAddress(b), nil
}

func (s *Store) SetGovernor(addr common.Address) error {
	if err := s.table.Meta.Put(mkGovernor, addr.Bytes()); err != nil {
		return fmt.Errorf("store governor: %w", err)
	}
	return nil
}

func (s *Store) Rules() (escrow.Rules, error) {
	b, err := s.table.Meta.Get(mkRules)
	if err != nil {
		return escrow.Rules{}, fmt.Errorf("load rules: %w", err)
	}
	if b == nil {
		return escrow.Rules{}, escrow.ErrNotInitialized
	}
	var rlpRules escrow.RulesRLP
	if err := rlp.DecodeBytes(b, &rlpRules); err != nil {
		return escrow.Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return escrow.Rules(rlpRules), nil
}

func (s *Store) SetRules(r escrow.Rules) error {
	b, err := rlp.EncodeToBytes(escrow.RulesRLP(r))
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := s.table.Meta.Put(mkRules, b); err != nil {
		return fmt.Errorf("store rules: %w", err)
	}
	return nil
}

func (s *Store) GenesisHash() (hash.Hash, error) {
	b, err := s.table.Meta.Get(mkGenesisHash)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("load genesis hash: %w", err)
	}
	return hash.BytesToHash(b), nil
}

func (s *Store) SetGenesisHash(h hash.Hash) error {
	if err := s.table.Meta.Put(mkGenesisHash, h.Bytes()); err != nil {
		return fmt.Errorf("store genesis hash: %w", err)
	}
	return nil
}

func (s *Store) GenesisTime() (inter.Timestamp, error) {
	v, err := s.metaUint64(mkGenesisTime)
	return inter.Timestamp(v), err
}

func (s *Store) SetGenesisTime(t inter.Timestamp) error {
	return s.setMetaUint64(mkGenesisTime, uint64(t))
}
