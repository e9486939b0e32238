package compositor

// Transport is the minimal byte-stream collaborator the compositor depends
// on: one inbound wire message per Recv call, one outbound FrameAck per
// SendAck call. internal/transport/wstransport is the one concrete
// implementation shipped in this repo; any reliable framed transport can
// satisfy this interface.
type Transport interface {
	Recv() ([]byte, error)
	SendAck(frame []byte) error
}
