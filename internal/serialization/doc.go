// Package serialization provides the native .nami snapshot format for saving
// and loading trained NamiNet networks.
//
// The .nami format stores the complete training state of a network: weights,
// biases, Adam moment buffers and per-layer step counters, so a restored
// network predicts and continues training exactly like the one saved.
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "NAMI"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the tensor data]
//	  0x40 [Header: JSON metadata]
//	       [Tensor data: float64 LE, 64-byte aligned]
//
// A second, more compact encoding using the protobuf wire format is
// available through MarshalProto and UnmarshalProto. SaveFile and LoadFile
// pick the encoding from the file extension.
//
// Example usage:
//
//	// Save a network
//	header, err := serialization.Save("model.nami", net.State(), map[string]string{
//	    "dataset": "mnist_train.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	state, header, err := serialization.Load("model.nami")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	net, err := nn.NewNetworkFromState(state)
package serialization
