// Copyright 2024 The evmint Authors
// This file is part of the evmint library.
//
// The evmint library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmint library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmint library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Execute runs the code against a synchronous host, answering every interrupt
// in place. It is the non-resumable convenience over ExecuteResumable.
func (c *AnalyzedCode) Execute(host Host, hooks *Hooks, msg *Message, rev Revision) *Output {
	it := c.ExecuteResumable(msg, rev, hooks)
	var data ResumeData
	for {
		out, next, err := it.Resume(data)
		if err != nil {
			return &Output{Status: StatusInternalError}
		}
		if out != nil {
			return out
		}
		it = next

		switch it.Kind() {
		case InterruptAccountExists:
			data = AccountExistsStatus{Exists: host.AccountExists(it.Account())}
		case InterruptGetStorage:
			data = StorageValue{Value: host.GetStorage(it.Account(), it.StorageKey())}
		case InterruptSetStorage:
			data = StorageStatusInfo{Status: host.SetStorage(it.Account(), it.StorageKey(), it.StorageValue())}
		case InterruptGetBalance:
			payload := Balance{}
			if b := host.GetBalance(it.Account()); b != nil {
				payload.Balance = *b
			}
			data = payload
		case InterruptGetCodeSize:
			data = CodeSize{Size: host.GetCodeSize(it.Account())}
		case InterruptGetCodeHash:
			data = CodeHash{Hash: host.GetCodeHash(it.Account())}
		case InterruptCopyCode:
			offset, maxSize := it.CodeRange()
			buf := make([]byte, maxSize)
			n := host.CopyCode(it.Account(), offset, buf)
			data = Code{Code: buf[:n]}
		case InterruptSelfdestruct:
			host.Selfdestruct(msg.Recipient, it.Account())
			data = nil
		case InterruptCall:
			data = CallOutput{Output: host.Call(it.CallMessage())}
		case InterruptTxContext:
			data = TxContextData{Context: host.TxContext()}
		case InterruptBlockHash:
			data = BlockHashData{Hash: host.GetBlockHash(it.BlockNumber())}
		case InterruptEmitLog:
			topics, logData := it.Log()
			host.EmitLog(it.Account(), topics, logData)
			data = nil
		case InterruptAccessAccount:
			data = AccessAccountStatus{Status: host.AccessAccount(it.Account())}
		case InterruptAccessStorage:
			data = AccessStorageStatus{Status: host.AccessStorage(it.Account(), it.StorageKey())}
		default:
			return &Output{Status: StatusInternalError}
		}
	}
}

// EVM binds a host and a revision so callers can execute raw bytecode without
// dealing with analysis or interrupts.
type EVM struct {
	host  Host
	rev   Revision
	hooks *Hooks
}

// NewEVM returns an EVM executing under rev against host. hooks may be nil.
func NewEVM(host Host, rev Revision, hooks *Hooks) *EVM {
	return &EVM{host: host, rev: rev, hooks: hooks}
}

// Revision returns the revision executions run under.
func (e *EVM) Revision() Revision {
	return e.rev
}

// Execute analyzes code and runs it to completion under msg.
func (e *EVM) Execute(msg *Message, code []byte) *Output {
	return Analyze(code).Execute(e.host, e.hooks, msg, e.rev)
}
